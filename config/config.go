package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv 把 .env 灌进环境变量，已有的真实环境变量优先。
// 文件不存在不算错（生产环境直接用环境变量）。
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("load .env: %v", err)
		}
		return
	}
	log.Println("Loaded .env")
}
