package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv reads a local .env file unless running on Railway, where the
// environment is provided by the platform.
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") != "" {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not loaded")
	}
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
