// Package config loads the three required environment variables. Every
// field is mandatory; the process fails fast at startup if one is
// missing so a misconfigured deploy never starts serving traffic.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the process-wide settings read from the environment.
type Config struct {
	DatabaseURL  string
	WSUrl        string
	JWTSecretKey string
}

// Load reads a .env file if present (missing is not an error) and then
// requires DATABASE_URL, WS_URL, and JWT_SECRET_KEY to be set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		WSUrl:        os.Getenv("WS_URL"),
		JWTSecretKey: os.Getenv("JWT_SECRET_KEY"),
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.WSUrl == "" {
		missing = append(missing, "WS_URL")
	}
	if cfg.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("config: missing required environment variables: %v", missing)
	}

	return cfg, nil
}
