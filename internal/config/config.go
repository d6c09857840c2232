package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// MinSecretLength is the minimum accepted length of the token signing secret.
// Anything shorter is treated as a misconfiguration and refused at startup.
const MinSecretLength = 32

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabaseURL    string
	DatabasePath   string
	MigrationsPath string

	// TokenSecret signs session tokens. Required, never defaulted.
	TokenSecret []byte

	SessionTTL    time.Duration
	ResetTokenTTL time.Duration

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	CORSAllowOrigin string
}

// Load reads configuration from the environment, honoring a .env file when
// present. It fails rather than substituting defaults for security-critical
// values: a missing or short JWT_SECRET is a fatal misconfiguration.
func Load() (*Config, error) {
	// Best-effort: a missing .env file is fine, the environment wins anyway.
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:      getEnv("PORT", "8080"),
		DatabaseType:    getEnv("DB_TYPE", "postgres"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DatabasePath:    getEnv("DB_PATH", "./finplan.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		SessionTTL:      7 * 24 * time.Hour,
		ResetTokenTTL:   1 * time.Hour,
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:    os.Getenv("SES_FROM_EMAIL"),
		SESFromName:     getEnv("SES_FROM_NAME", "FinPlan"),
		AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:8080"),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set; refusing to start with no signing secret")
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	cfg.TokenSecret = []byte(secret)

	switch cfg.DatabaseType {
	case "postgres", "postgresql", "mysql":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE is %s", cfg.DatabaseType)
		}
	}

	return cfg, nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
