// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
)

// Config holds application configuration.
type Config struct {
	Port     string
	LogLevel string

	StoreBackend string
	ProjectID    string
	DBConn       string
	SQLitePath   string

	// Optional YAML overrides for the engine tables.
	CategoryRulesPath string
	TaxTablePath      string

	AnomalyThreshold float64
	DigestSchedule   string
	AllowedOrigins   []string
	// LocalDev injects a fixed user instead of reading the X-User-ID header.
	LocalDev bool
	// JWTSecret switches authentication to HS256 bearer tokens when set.
	JWTSecret string

	// RedisAddr enables the weekly digest cache when set.
	RedisAddr string
	// SMTP relay for digest emails; disabled when SMTPHost is empty.
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	DigestFrom   string

	// SeedDemo fills an in-memory store with demo data for the local dev user.
	SeedDemo bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded when present; an explicit path must exist.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	threshold, err := parseFloatEnv("ANOMALY_THRESHOLD", 2.0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8111"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		StoreBackend:      strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		ProjectID:         getEnv("GOOGLE_CLOUD_PROJECT", "pfinance-app-1748773335"),
		DBConn:            os.Getenv("DB_CONN"),
		SQLitePath:        getEnv("SQLITE_PATH", "insights.db"),
		CategoryRulesPath: os.Getenv("CATEGORY_RULES_PATH"),
		TaxTablePath:      os.Getenv("TAX_TABLE_PATH"),
		AnomalyThreshold:  threshold,
		DigestSchedule:    getEnv("DIGEST_SCHEDULE", "0 8 * * 1"),
		AllowedOrigins:    splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:1234,http://localhost:3000")),
		LocalDev:          os.Getenv("SKIP_AUTH") == "true",
		SeedDemo:          os.Getenv("SEED_DEMO") == "true",
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          getEnv("SMTP_PORT", "587"),
		SMTPUsername:      os.Getenv("SMTP_USERNAME"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		DigestFrom:        getEnv("DIGEST_FROM_EMAIL", "digest@pfinance.dev"),
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	switch c.StoreBackend {
	case BackendMemory:
	case BackendFirestore:
		if c.ProjectID == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the firestore backend")
		}
	case BackendPostgres:
		if c.DBConn == "" {
			return fmt.Errorf("DB_CONN is required for the postgres backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.AnomalyThreshold <= 0 {
		return fmt.Errorf("ANOMALY_THRESHOLD must be positive, got %v", c.AnomalyThreshold)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.SMTPHost != "" && c.DigestFrom == "" {
		return fmt.Errorf("DIGEST_FROM_EMAIL is required when SMTP_HOST is set")
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 bytes")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func parseFloatEnv(key string, defaultVal float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for %s: %s", key, value)
	}
	return parsed, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
