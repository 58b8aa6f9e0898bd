package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	Environment    string
	LogLevel       string

	// Storage. Backend is an explicit choice: "redis", "postgres" or "local".
	// The local backend is a single-device fallback and is not shared between
	// deployments.
	StoreBackend   string
	RedisURL       string
	DatabaseURL    string
	LocalStorePath string

	// Portal
	AdminEmail          string
	StudentEmailPattern string
	JWTSecret           string

	// Identity provider. When the API key is empty the portal runs in demo
	// mode: accounts are auto-verified and verification/reset mail is
	// unavailable.
	IdentityAPIKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		Environment:    getEnv("ENVIRONMENT", "production"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		StoreBackend:   getEnv("STORE_BACKEND", "local"),
		RedisURL:       getEnv("REDIS_URL", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		LocalStorePath: getEnv("LOCAL_STORE_PATH", "data/store"),

		AdminEmail:          getEnv("ADMIN_EMAIL", "tiemppo.gamezone2@gmail.com"),
		StudentEmailPattern: getEnv("STUDENT_EMAIL_PATTERN", `^\d{7}@lwsd\.org$`),
		JWTSecret:           getEnv("JWT_SECRET", ""),

		IdentityAPIKey: getEnv("IDENTITY_API_KEY", ""),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
