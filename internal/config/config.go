package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names for the store configuration
const (
	BackendDynamo = "dynamo"
	BackendSQLite = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	LogLevel    string
	Store       StoreConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
}

// StoreConfig holds key-value store configuration
type StoreConfig struct {
	Backend       string // "dynamo" or "sqlite"
	Region        string
	Endpoint      string // non-empty for local DynamoDB
	AccessKey     string
	SecretKey     string
	SQLitePath    string
	KeyAttributes []string // primary-key convention for the sqlite backend
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Enabled     bool
	JWTSecret   string
	ExpiryHours int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Set up Viper
	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_BACKEND", BackendSQLite)
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("SQLITE_PATH", "./data/kvops.db")
	viper.SetDefault("SQLITE_KEY_ATTRIBUTE", "id")
	viper.SetDefault("AUTH_ENABLED", false)
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("RATE_LIMIT_RPS", 0.0)

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		LogLevel:    viper.GetString("LOG_LEVEL"),
		Store: StoreConfig{
			Backend:       viper.GetString("STORE_BACKEND"),
			Region:        viper.GetString("AWS_REGION"),
			Endpoint:      viper.GetString("DYNAMO_ENDPOINT"),
			AccessKey:     viper.GetString("DYNAMO_ACCESS_KEY"),
			SecretKey:     viper.GetString("DYNAMO_SECRET_KEY"),
			SQLitePath:    viper.GetString("SQLITE_PATH"),
			KeyAttributes: []string{viper.GetString("SQLITE_KEY_ATTRIBUTE")},
		},
		Auth: AuthConfig{
			Enabled:     viper.GetBool("AUTH_ENABLED"),
			JWTSecret:   viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
		},
	}

	return config, nil
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvAsInt gets an environment variable as integer with a fallback value
func GetEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// GetEnvAsBool gets an environment variable as boolean with a fallback value
func GetEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
