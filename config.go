package main

import (
	"fmt"
	"os"
	"time"
)

// config holds all runtime configuration, read from the environment after an
// optional .env file has been loaded.
type config struct {
	DBURL          string
	JWTSecret      string
	Addr           string
	LogLevel       string
	TokenTTL       time.Duration
	MigrateOnStart bool
}

// loadConfig reads configuration from environment variables.
// DB_URL and JWT_SECRET are required.
func loadConfig() (*config, error) {
	cfg := &config{
		Addr:           getEnvOrDefault("ADDR", "localhost:3000"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		MigrateOnStart: getEnvOrDefault("MIGRATE_ON_START", "false") == "true",
	}

	if cfg.DBURL = os.Getenv("DB_URL"); cfg.DBURL == "" {
		return nil, fmt.Errorf("DB_URL environment variable is required")
	}
	if cfg.JWTSecret = os.Getenv("JWT_SECRET"); cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	ttl, err := time.ParseDuration(getEnvOrDefault("TOKEN_TTL", "168h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be a positive duration, got %q", os.Getenv("TOKEN_TTL"))
	}
	cfg.TokenTTL = ttl

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
