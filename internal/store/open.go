package store

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"

	"github.com/castlemilk/pfinance/insights/internal/config"
)

// Open connects the backend named by cfg.StoreBackend. The returned func
// releases the underlying client or database handle. SQL backends are
// migrated before they are returned.
//
// The caller is responsible for importing the database/sql driver for the
// chosen backend (lib/pq for postgres, go-sqlite3 for sqlite).
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (Backend, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendFirestore:
		client, err := firestore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Firestore client: %w", err)
		}
		logger.WithField("project", cfg.ProjectID).Info("Using Firestore store")
		return NewFirestoreStore(client), func() { client.Close() }, nil

	case config.BackendPostgres:
		return openSQL(ctx, "postgres", cfg.DBConn, DialectPostgres, logger)

	case config.BackendSQLite:
		return openSQL(ctx, "sqlite3", cfg.SQLitePath, DialectSQLite, logger)

	case config.BackendMemory, "":
		logger.Info("Using in-memory store for local development")
		return NewMemoryStore(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func openSQL(ctx context.Context, driver, dsn string, dialect Dialect, logger *logrus.Logger) (Backend, func(), error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := withRetry(ctx, DefaultConnectRetry, db.PingContext); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to reach %s database: %w", driver, err)
	}

	s := NewSQLStore(db, dialect)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.WithField("driver", driver).Info("Using SQL store")
	return s, func() { db.Close() }, nil
}
