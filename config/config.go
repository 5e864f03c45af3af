package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"

	// developmentJWTSecret is only accepted when ENVIRONMENT=development
	developmentJWTSecret = "dev-only-insecure-jwt-secret"
)

// ErrMissingJWTSecret is returned when JWT_SECRET is unset outside development
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set outside development")

// Config holds the server configuration
type Config struct {
	Port        string
	Environment string
	FrontendURL string
	// TrustedProxy enables X-Forwarded-For / X-Real-IP as the client address
	TrustedProxy bool

	JWT       JWTConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

// JWTConfig holds token signing settings
type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// RedisConfig holds the optional Redis connection used for token revocation and audit events
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// RateLimitConfig holds the per-client request budget for the API
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads the configuration from environment variables.
// A .env file, if present, must be loaded by the caller beforehand.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         GetEnvOrDefault("PORT", "5000"),
		Environment:  strings.ToLower(GetEnvOrDefault("ENVIRONMENT", EnvironmentDevelopment)),
		FrontendURL:  GetEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		TrustedProxy: ParseBoolOrDefault("TRUSTED_PROXY", false),
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			Issuer:     GetEnvOrDefault("JWT_ISSUER", "cpt-bid-marketplace"),
			AccessTTL:  ParseDurationOrDefault("JWT_EXPIRES_IN", 24*time.Hour),
			RefreshTTL: ParseDurationOrDefault("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       ParseIntOrDefault("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Requests: ParseIntOrDefault("RATE_LIMIT_REQUESTS", 100),
			Window:   ParseDurationOrDefault("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
	}

	if cfg.JWT.Secret == "" {
		if !cfg.IsDevelopment() {
			return nil, ErrMissingJWTSecret
		}
		slog.Warn("JWT_SECRET not set, using insecure development secret")
		cfg.JWT.Secret = developmentJWTSecret
	}

	return cfg, nil
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvironmentDevelopment
}

// GetEnvOrDefault returns the environment variable value or a default
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ParseIntOrDefault parses an integer from environment variable or returns default
func ParseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		slog.Warn("Invalid integer format, using default", "key", key, "value", value, "default", defaultValue)
	}
	return defaultValue
}

// ParseDurationOrDefault parses a duration from environment variable or returns default.
// Accepts formats like "1h", "30m", "15s".
func ParseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		slog.Warn("Invalid duration format, using default", "key", key, "value", value, "default", defaultValue)
	}
	return defaultValue
}

// ParseBoolOrDefault parses a boolean from environment variable or returns default
func ParseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
