package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	BaseURL     string
	FrontendURL string
	UploadDir   string

	// Game Settings
	StartingBalance         int64
	BoardSize               int
	WinLength               int
	PlatformFeePercent      int
	MinEntryFee             int64
	MatchSnapshotTTLMinutes int

	// Security
	JWTSecret        string
	TokenExpiryHours int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/roomofy?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "5000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:5000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5500"),
		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),

		// Game Settings
		StartingBalance:         getEnvInt64("STARTING_BALANCE", 1000),
		BoardSize:               getEnvInt("BOARD_SIZE", 8),
		WinLength:               getEnvInt("WIN_LENGTH", 3),
		PlatformFeePercent:      getEnvInt("PLATFORM_FEE_PERCENT", 20),
		MinEntryFee:             getEnvInt64("MIN_ENTRY_FEE", 1),
		MatchSnapshotTTLMinutes: getEnvInt("MATCH_SNAPSHOT_TTL_MINUTES", 30),

		// Security
		JWTSecret:        getEnv("JWT_SECRET", "change-me-in-production"),
		TokenExpiryHours: getEnvInt("TOKEN_EXPIRY_HOURS", 24),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}
