package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration (cache side-channel + rate limiting)
	Redis RedisConfig

	// JWT configuration (consultant-authenticated routes)
	JWT JWTConfig

	// Booking pipeline timing budgets
	Booking BookingConfig

	// Razorpay gateway configuration
	Razorpay RazorpayConfig

	// Resend email configuration
	Resend ResendConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// RedisConfig holds Redis cache configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT verification configuration. Tokens are issued by the
// admin system; this service only verifies them.
type JWTConfig struct {
	Secret string
}

// BookingConfig holds the two nested timeout budgets for the booking
// pipeline. TransactionTimeout must always be shorter than RequestTimeout
// so a slow transaction fails predictably inside the request budget.
type BookingConfig struct {
	RequestTimeout     time.Duration
	TransactionTimeout time.Duration
	DefaultDuration    int // minutes
}

// RazorpayConfig holds Razorpay gateway configuration
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string // SECRET - never expose to client
	WebhookSecret string
}

// ResendConfig holds Resend email configuration
type ResendConfig struct {
	Mode      string // "dev" logs instead of sending, "production" sends
	APIKey    string
	FromEmail string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_CACHE_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Booking: BookingConfig{
			RequestTimeout:     time.Duration(getEnvAsInt("BOOKING_REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
			TransactionTimeout: time.Duration(getEnvAsInt("BOOKING_TRANSACTION_TIMEOUT_SECONDS", 10)) * time.Second,
			DefaultDuration:    getEnvAsInt("BOOKING_DEFAULT_DURATION_MINUTES", 60),
		},
		Razorpay: RazorpayConfig{
			KeyID:         getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
			WebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
		},
		Resend: ResendConfig{
			Mode:      getEnv("RESEND_MODE", "dev"), // "dev" or "production"
			APIKey:    getEnv("RESEND_API_KEY", ""),
			FromEmail: getEnv("RESEND_FROM_EMAIL", "bookings@consultly.app"),
		},
		RateLimit: RateLimitConfig{
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Booking.TransactionTimeout >= c.Booking.RequestTimeout {
		return fmt.Errorf("BOOKING_TRANSACTION_TIMEOUT_SECONDS must be shorter than BOOKING_REQUEST_TIMEOUT_SECONDS")
	}

	if c.Server.Environment == "production" {
		if c.Razorpay.KeyID == "" || c.Razorpay.KeySecret == "" {
			return fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required in production")
		}
		if c.Razorpay.WebhookSecret == "" {
			return fmt.Errorf("RAZORPAY_WEBHOOK_SECRET is required in production")
		}
		if c.Resend.Mode == "production" && c.Resend.APIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required when RESEND_MODE is production")
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
