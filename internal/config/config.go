package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	Environment    string

	// Poll store
	StoreBackend string // redis, postgres or memory
	StoreStrict  bool   // missing targets error instead of no-op
	RedisURL     string
	DatabaseURL  string

	// Business search AI
	YelpAPIKey     string
	YelpAPIBaseURL string

	// Multimodal analysis
	GeminiAPIKey string

	// Calendar OAuth
	GoogleCalendarClientID     string
	GoogleCalendarClientSecret string
	GoogleOAuthRedirectURI     string

	// Geolocation fallback when a device reports no coordinate
	DefaultLatitude  float64
	DefaultLongitude float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Environment:    getEnv("ENVIRONMENT", "production"),

		StoreBackend: getEnv("STORE_BACKEND", "redis"),
		StoreStrict:  getBoolEnv("STORE_STRICT", false),
		RedisURL:     getEnv("REDIS_URL", ""),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		YelpAPIKey:     getEnv("YELP_API_KEY", ""),
		YelpAPIBaseURL: getEnv("YELP_API_BASE_URL", "https://api.yelp.com"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),

		GoogleCalendarClientID:     getEnv("GOOGLE_CALENDAR_CLIENT_ID", ""),
		GoogleCalendarClientSecret: getEnv("GOOGLE_CALENDAR_CLIENT_SECRET", ""),
		GoogleOAuthRedirectURI:     getEnv("GOOGLE_OAUTH_REDIRECT_URI", "http://localhost:5173/auth/google/callback"),

		// San Francisco, matching the frontend's default map center
		DefaultLatitude:  getFloatEnv("DEFAULT_LATITUDE", 37.7749),
		DefaultLongitude: getFloatEnv("DEFAULT_LONGITUDE", -122.4194),
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

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getFloatEnv gets a float environment variable with a fallback value
func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
