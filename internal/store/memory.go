package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// MemoryStore implements Store with in-memory storage. The Put methods seed
// it for local development and tests.
type MemoryStore struct {
	mu sync.RWMutex

	transactions map[string]finance.Transaction
	budgets      map[string]finance.Budget
	goals        map[string]finance.Goal
	profiles     map[string]finance.Profile
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]finance.Transaction),
		budgets:      make(map[string]finance.Budget),
		goals:        make(map[string]finance.Goal),
		profiles:     make(map[string]finance.Profile),
	}
}

// PutTransaction stores a transaction, assigning an ID when it has none.
func (m *MemoryStore) PutTransaction(ctx context.Context, t finance.Transaction) (string, error) {
	id, err := prepareID("transaction", t.UserID, t.ID)
	if err != nil {
		return "", err
	}
	t.ID = id

	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[id] = t
	return id, nil
}

// PutBudget stores a budget, assigning an ID when it has none.
func (m *MemoryStore) PutBudget(ctx context.Context, b finance.Budget) (string, error) {
	id, err := prepareID("budget", b.UserID, b.ID)
	if err != nil {
		return "", err
	}
	b.ID = id

	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgets[id] = b
	return id, nil
}

// PutGoal stores a goal, assigning an ID when it has none.
func (m *MemoryStore) PutGoal(ctx context.Context, g finance.Goal) (string, error) {
	id, err := prepareID("goal", g.UserID, g.ID)
	if err != nil {
		return "", err
	}
	g.ID = id

	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[id] = g
	return id, nil
}

// PutProfile stores or replaces a user's profile.
func (m *MemoryStore) PutProfile(ctx context.Context, p finance.Profile) error {
	if p.UserID == "" {
		return fmt.Errorf("profile has no user")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profiles[p.UserID] = p
	return nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, start, end *time.Time) ([]finance.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []finance.Transaction
	for _, t := range m.transactions {
		if t.UserID != userID || !inRange(t.Date, start, end) {
			continue
		}
		result = append(result, t)
	}
	sortTransactions(result)
	return result, nil
}

func (m *MemoryStore) ListBudgets(ctx context.Context, userID string) ([]finance.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []finance.Budget
	for _, b := range m.budgets {
		if b.UserID == userID {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MemoryStore) ListGoals(ctx context.Context, userID string) ([]finance.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []finance.Goal
	for _, g := range m.goals {
		if g.UserID == userID {
			result = append(result, g)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MemoryStore) GetProfile(ctx context.Context, userID string) (finance.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return finance.Profile{}, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	return p, nil
}

func (m *MemoryStore) ListUserIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.profiles))
	for id := range m.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
