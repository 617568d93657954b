package config

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv 本地开发读 .env，部署环境直接用进程环境变量
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}
}
