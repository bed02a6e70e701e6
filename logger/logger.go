package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	// Info 正常日志，输出到 stdout
	Info *logrus.Logger

	// Error 错误日志，输出到 stderr
	Error *logrus.Logger
)

func init() {
	Info = logrus.New()
	Info.SetOutput(os.Stdout)
	Info.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})

	Error = logrus.New()
	Error.SetOutput(os.Stderr)
	Error.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
	Error.SetLevel(logrus.ErrorLevel)
}

// Println 输出正常日志到 stdout
func Println(v ...interface{}) {
	Info.Println(v...)
}

// Printf 格式化输出正常日志到 stdout
func Printf(format string, v ...interface{}) {
	Info.Printf(format, v...)
}

// Errorln 输出错误日志到 stderr
func Errorln(v ...interface{}) {
	Error.Errorln(v...)
}

// Errorf 格式化输出错误日志到 stderr
func Errorf(format string, v ...interface{}) {
	Error.Errorf(format, v...)
}

// Fatalf 输出致命错误并退出程序
func Fatalf(format string, v ...interface{}) {
	Error.Fatalf(format, v...)
}
