// seed writes a reproducible demo ledger for one user into the configured
// store backend.
//
// Usage:
//
//	STORE_BACKEND=sqlite SQLITE_PATH=insights.db go run ./cmd/seed -user demo-user
package main

import (
	"context"
	"flag"
	"os"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/castlemilk/pfinance/insights/internal/auth"
	"github.com/castlemilk/pfinance/insights/internal/config"
	"github.com/castlemilk/pfinance/insights/internal/demo"
	"github.com/castlemilk/pfinance/insights/internal/store"
)

func main() {
	userID := flag.String("user", getEnv("SEED_USER_ID", "demo-user"), "user to seed")
	seed := flag.Int64("seed", 42, "random seed")
	asOfFlag := flag.String("as-of", "", "last day of generated history (YYYY-MM-DD, default today)")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid config")
	}
	if cfg.StoreBackend == config.BackendMemory {
		logger.Warn("Seeding the in-memory store; data is discarded on exit")
	}

	asOf := time.Now().UTC()
	if *asOfFlag != "" {
		asOf, err = time.Parse("2006-01-02", *asOfFlag)
		if err != nil {
			logger.WithError(err).Fatal("Invalid -as-of date")
		}
	}

	ctx := context.Background()
	backend, closeStore, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer closeStore()

	counts, err := demo.Seed(ctx, backend, demo.Generate(*userID, asOf, *seed))
	if err != nil {
		logger.WithError(err).Fatal("Failed to seed demo data")
	}
	logger.WithFields(logrus.Fields{
		"user_id":      *userID,
		"as_of":        asOf.Format("2006-01-02"),
		"transactions": counts.Transactions,
		"budgets":      counts.Budgets,
		"goals":        counts.Goals,
	}).Info("Seeded demo data")

	if cfg.JWTSecret != "" {
		token, err := auth.IssueToken([]byte(cfg.JWTSecret), *userID, *userID+"@demo.local", 24*time.Hour, time.Now())
		if err != nil {
			logger.WithError(err).Fatal("Failed to issue demo token")
		}
		logger.WithField("token", token).Info("Issued 24h bearer token for the demo user")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
