package services

import (
	"fmt"
	"time"
)

// wib 固定 UTC+7,上游记分系统全部以雅加达时间展示
var wib = time.FixedZone("WIB", 7*60*60)

var wibMonths = [...]string{
	"Jan", "Feb", "Mar", "Apr", "Mei", "Jun",
	"Jul", "Agu", "Sep", "Okt", "Nov", "Des",
}

// WIBTimestamp 长格式: "02 Agu 2025, 15:04:05 WIB"
func WIBTimestamp() string {
	return formatWIB(time.Now())
}

// WIBTimestampShort 短格式: "15:04:05"
func WIBTimestampShort() string {
	return time.Now().In(wib).Format("15:04:05")
}

func formatWIB(t time.Time) string {
	t = t.In(wib)
	return fmt.Sprintf("%02d %s %d, %02d:%02d:%02d WIB",
		t.Day(), wibMonths[t.Month()-1], t.Year(),
		t.Hour(), t.Minute(), t.Second())
}
