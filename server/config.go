package server

import (
	"os"

	"github.com/joho/godotenv"
)

// Config 进程级配置：监听地址与日志输出
// 优先级：命令行 flag > 环境变量 > .env 文件 > 默认值
type Config struct {
	Addr     string
	LogFile  string
	LogLevel string
}

// LoadConfig 读取 .env（存在则加载）并合并环境变量
func LoadConfig() Config {
	// .env 缺失不算错误，本地开发才需要
	_ = godotenv.Load()

	cfg := Config{
		Addr:     ":8080",
		LogFile:  "app.log",
		LogLevel: "debug",
	}
	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}
