package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Tokens
	SecretKey       string
	EncryptTokens   bool
	AccessTokenTTL  time.Duration
	JWTIssuer       string
	JanitorInterval time.Duration // 0 disables the in-process sweep

	// Rate limits
	RateLimit RateLimitConfig
}

// RateLimitConfig holds per-endpoint-class rate limits.
type RateLimitConfig struct {
	Enabled                bool
	AuthRequestsPerMinute  int
	TokenRequestsPerWindow int
	TokenWindowMinutes     int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "blogosphere"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		SecretKey:       getEnv("SECRET_KEY", ""),
		EncryptTokens:   getEnvBool("ENCRYPT_TOKENS", true),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		JWTIssuer:       getEnv("JWT_ISSUER", "blogosphere"),
		JanitorInterval: getEnvDuration("JANITOR_INTERVAL", 0),

		RateLimit: RateLimitConfig{
			Enabled:                getEnvBool("RATE_LIMIT_ENABLED", true),
			AuthRequestsPerMinute:  getEnvInt("RATE_LIMIT_AUTH_PER_MINUTE", 10),
			TokenRequestsPerWindow: getEnvInt("RATE_LIMIT_TOKEN_PER_WINDOW", 5),
			TokenWindowMinutes:     getEnvInt("RATE_LIMIT_TOKEN_WINDOW_MINUTES", 15),
		},
	}

	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}
	if len(cfg.SecretKey) < 32 {
		return nil, fmt.Errorf("SECRET_KEY must be at least 32 bytes, got %d", len(cfg.SecretKey))
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
