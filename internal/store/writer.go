package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// Writer loads records into a backend. Only seeding tools write; the
// insights service reads through Store.
type Writer interface {
	PutTransaction(ctx context.Context, t finance.Transaction) (string, error)
	PutBudget(ctx context.Context, b finance.Budget) (string, error)
	PutGoal(ctx context.Context, g finance.Goal) (string, error)
	PutProfile(ctx context.Context, p finance.Profile) error
}

// Backend is a store that can also be seeded.
type Backend interface {
	Store
	Writer
}

var (
	_ Backend = (*MemoryStore)(nil)
	_ Backend = (*SQLStore)(nil)
	_ Backend = (*FirestoreStore)(nil)
)

// prepareID checks ownership and assigns an ID to records that have none.
func prepareID(kind, userID, id string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%s has no user", kind)
	}
	if id == "" {
		id = uuid.New().String()
	}
	return id, nil
}
