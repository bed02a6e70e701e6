package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Livescore 服务器配置
	LivescoreHost string
	CourtList     []string

	// HTTP 服务器配置
	Port string

	// 数据库配置 (BTP 比赛记录查询,可选)
	DatabaseURL string

	// AMQP 桥接配置 (可选的第二事件来源)
	AMQPUrl   string
	AMQPQueue string
}

func Load() *Config {
	// 加载 .env (不存在则忽略)
	godotenv.Load()

	return &Config{
		LivescoreHost: getEnv("LIVESCORE_HOST", "http://localhost:1337"),
		CourtList:     getCourtList(),

		Port: getEnv("PORT", "6969"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		AMQPUrl:   getEnv("AMQP_URL", ""),
		AMQPQueue: getEnv("AMQP_QUEUE", "livescore.events"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getCourtList 解析场地列表,空白项会被丢弃
func getCourtList() []string {
	raw := getEnv("COURT_LIST", "1,2,3,4,5,6,7,8,9,10,11,12")

	var courts []string
	for _, c := range strings.Split(raw, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			courts = append(courts, c)
		}
	}
	return courts
}
