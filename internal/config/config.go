package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	ServerPort  string
	Environment string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis configuration
	RedisAddress string

	// JWT configuration
	JWTSecret string

	// Mailer service config
	MailerAddress string
	MailerSecret  string

	// internal secret used for communication between servers
	InternalSecret string

	FrontendAddress string

	// Presence / realtime knobs
	HeartbeatInterval time.Duration
	TypingWindow      time.Duration

	// Invitation token lifetime
	InviteTTL time.Duration
}

// Global application configuration
var AppConfig Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Find .env file
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Try to find .env in parent directories
		envPath = filepath.Join("..", ".env")
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			envPath = filepath.Join("..", "..", ".env")
		}
	}

	// Load .env file if it exists
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	AppConfig = Config{
		ServerPort:        getEnv("PORT", "8080"),
		Environment:       getEnv("ENV", "development"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "taskhive"),
		RedisAddress:      getEnv("REDIS_ADDRESS", "localhost:6379"),
		JWTSecret:         getEnv("JWT_SECRET", "taskhive-jwt-secret"),
		MailerAddress:     getEnv("MAILER_ADDRESS", "http://localhost:8788"),
		MailerSecret:      getEnv("MAILER_SECRET", "taskhive-mailer-secret"),
		InternalSecret:    getEnv("INTERNAL_SECRET", "taskhive-internal-secret"),
		FrontendAddress:   getEnv("FRONTEND_ADDRESS", "https://production-frontend.com"),
		HeartbeatInterval: getEnvDuration("HEARTBEAT_INTERVAL_SECONDS", 30) * time.Second,
		TypingWindow:      getEnvDuration("TYPING_WINDOW_SECONDS", 2) * time.Second,
		InviteTTL:         getEnvDuration("INVITE_TTL_HOURS", 7*24) * time.Hour,
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvDuration reads a numeric environment variable as a bare count;
// the caller applies the unit.
func getEnvDuration(key string, defaultValue int64) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return time.Duration(defaultValue)
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default %d\n", key, value, defaultValue)
		return time.Duration(defaultValue)
	}
	return time.Duration(n)
}
