package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	RedisHost        string
	RedisPort        string
	SessionSecret    string
	GinMode          string
	ServerAddr       string
	UploadDir        string
	AdminInviteToken string
}

func Load() *Config {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	return &Config{
		DBDriver:         getEnv("DB_DRIVER", "mysql"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBUser:           getEnv("DB_USER", "taskboard"),
		DBPassword:       getEnv("DB_PASSWORD", "taskboard"),
		DBName:           getEnv("DB_NAME", "taskboard"),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		SessionSecret:    getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		ServerAddr:       getEnv("SERVER_ADDR", ":8080"),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		AdminInviteToken: getEnv("ADMIN_INVITE_TOKEN", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
