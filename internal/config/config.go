package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// External airline API configuration
	Airline AirlineConfig

	// Chat webhook configuration
	Notify NotifyConfig

	// Session token configuration
	Auth AuthConfig

	// Profile cache configuration
	Cache CacheConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL            string
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrateOnStart bool
}

// AirlineConfig holds settings for the external airline-operations API
type AirlineConfig struct {
	BaseURL         string
	APIKeyHeader    string
	Timeout         time.Duration
	AdminAPIKey     string
	AdminAPIKeyHash string // bcrypt hash, preferred over AdminAPIKey for the fallback check
}

// NotifyConfig holds the outbound chat webhook settings
type NotifyConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// AuthConfig holds session token settings
type AuthConfig struct {
	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration
}

// CacheConfig holds verified-profile cache settings
type CacheConfig struct {
	RedisURL   string
	ProfileTTL time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables, after loading a
// .env file from the working directory when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			RequestTimeout:  getDurationEnv("SERVER_REQUEST_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "training_management"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrateOnStart: getBoolEnv("MIGRATE_ON_START", true),
		},
		Airline: AirlineConfig{
			BaseURL:         getEnv("AIRLINE_API_BASE_URL", "https://api.airline-ops.example/v1"),
			APIKeyHeader:    getEnv("AIRLINE_API_KEY_HEADER", "X-API-Key"),
			Timeout:         getDurationEnv("AIRLINE_API_TIMEOUT", 10*time.Second),
			AdminAPIKey:     getEnv("ADMIN_API_KEY", ""),
			AdminAPIKeyHash: getEnv("ADMIN_API_KEY_HASH", ""),
		},
		Notify: NotifyConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
			Timeout:    getDurationEnv("NOTIFY_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			JWTIssuer:  getEnv("JWT_ISSUER", "training-management-api"),
			SessionTTL: getDurationEnv("SESSION_TTL", 12*time.Hour),
		},
		Cache: CacheConfig{
			RedisURL:   getEnv("REDIS_URL", ""),
			ProfileTTL: getDurationEnv("PROFILE_CACHE_TTL", 5*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Airline.BaseURL == "" {
		return fmt.Errorf("AIRLINE_API_BASE_URL is required")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	return nil
}

// Warnings lists settings whose absence does not stop the server but
// disables or defers a feature.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Database.URL == "" {
		warnings = append(warnings, "DATABASE_URL is not set, falling back to DB_* settings")
	}
	if c.Airline.AdminAPIKey == "" && c.Airline.AdminAPIKeyHash == "" {
		warnings = append(warnings, "ADMIN_API_KEY is not set, pilot lookup and bootstrap admin access are disabled")
	}
	if c.Notify.WebhookURL == "" {
		warnings = append(warnings, "NOTIFY_WEBHOOK_URL is not set, notifications are disabled")
	}
	if c.Auth.JWTSecret == "" {
		warnings = append(warnings, "JWT_SECRET is not set, session tokens are not issued")
	}
	return warnings
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
