// Package store provides read access to the records the insight engine analyses.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the read operations used by the insights service.
// Results are ordered deterministically so engine output is reproducible.
type Store interface {
	// ListTransactions returns a user's transactions dated within [start, end],
	// ordered by date then ID. Nil bounds are open.
	ListTransactions(ctx context.Context, userID string, start, end *time.Time) ([]finance.Transaction, error)
	ListBudgets(ctx context.Context, userID string) ([]finance.Budget, error)
	ListGoals(ctx context.Context, userID string) ([]finance.Goal, error)
	GetProfile(ctx context.Context, userID string) (finance.Profile, error)
	// ListUserIDs returns every user with a profile, sorted.
	ListUserIDs(ctx context.Context) ([]string, error)
}

// inRange reports whether t falls within the optional [start, end] bounds.
func inRange(t time.Time, start, end *time.Time) bool {
	if start != nil && t.Before(*start) {
		return false
	}
	if end != nil && t.After(*end) {
		return false
	}
	return true
}

func sortTransactions(txns []finance.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.Before(txns[j].Date)
		}
		return txns[i].ID < txns[j].ID
	})
}
