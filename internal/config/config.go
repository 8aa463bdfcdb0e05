package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	VerifyToken    string
	WhatsAppToken  string
	WhatsAppAPIURL string
	PhoneNumberID  string
	DBDriver       string
	DBPath         string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	SendTimeout    time.Duration
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		VerifyToken:    getEnv("VERIFY_TOKEN", ""),
		WhatsAppToken:  getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppAPIURL: getEnv("WHATSAPP_API_URL", "https://graph.facebook.com/v19.0"),
		PhoneNumberID:  getEnv("PHONE_NUMBER_ID", ""),
		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		DBPath:         getEnv("DB_PATH", "./chatbridge.db"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "chatbridge"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		SendTimeout:    getSecondsEnv("SEND_TIMEOUT_SECONDS", 10),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getSecondsEnv(key string, fallback int) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
		log.Printf("Warning: invalid value for %s, using default", key)
	}
	return time.Duration(fallback) * time.Second
}
