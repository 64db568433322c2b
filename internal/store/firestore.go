package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// Firestore collection names.
const (
	transactionsCollection = "transactions"
	budgetsCollection      = "budgets"
	goalsCollection        = "goals"
	profilesCollection     = "profiles"
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client: client,
	}
}

func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string, start, end *time.Time) ([]finance.Transaction, error) {
	// NOTE: Field names must match Go struct field names (PascalCase) as that's how Firestore serializes structs
	query := s.client.Collection(transactionsCollection).Where("UserID", "==", userID)
	if start != nil {
		query = query.Where("Date", ">=", *start)
	}
	if end != nil {
		query = query.Where("Date", "<=", *end)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txns := make([]finance.Transaction, 0, len(docs))
	for _, doc := range docs {
		var t finance.Transaction
		if err := doc.DataTo(&t); err != nil {
			return nil, fmt.Errorf("failed to parse transaction %s: %w", doc.Ref.ID, err)
		}
		if t.ID == "" {
			t.ID = doc.Ref.ID
		}
		txns = append(txns, t)
	}
	sortTransactions(txns)
	return txns, nil
}

func (s *FirestoreStore) ListBudgets(ctx context.Context, userID string) ([]finance.Budget, error) {
	docs, err := s.client.Collection(budgetsCollection).Where("UserID", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	budgets := make([]finance.Budget, 0, len(docs))
	for _, doc := range docs {
		var b finance.Budget
		if err := doc.DataTo(&b); err != nil {
			return nil, fmt.Errorf("failed to parse budget %s: %w", doc.Ref.ID, err)
		}
		if b.ID == "" {
			b.ID = doc.Ref.ID
		}
		budgets = append(budgets, b)
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].ID < budgets[j].ID })
	return budgets, nil
}

func (s *FirestoreStore) ListGoals(ctx context.Context, userID string) ([]finance.Goal, error) {
	docs, err := s.client.Collection(goalsCollection).Where("UserID", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	goals := make([]finance.Goal, 0, len(docs))
	for _, doc := range docs {
		var g finance.Goal
		if err := doc.DataTo(&g); err != nil {
			return nil, fmt.Errorf("failed to parse goal %s: %w", doc.Ref.ID, err)
		}
		if g.ID == "" {
			g.ID = doc.Ref.ID
		}
		goals = append(goals, g)
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].ID < goals[j].ID })
	return goals, nil
}

// GetProfile reads the profile document keyed by user ID.
func (s *FirestoreStore) GetProfile(ctx context.Context, userID string) (finance.Profile, error) {
	doc, err := s.client.Collection(profilesCollection).Doc(userID).Get(ctx)
	if doc != nil && !doc.Exists() {
		return finance.Profile{}, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return finance.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}

	var p finance.Profile
	if err := doc.DataTo(&p); err != nil {
		return finance.Profile{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	p.UserID = userID
	return p, nil
}

// ListUserIDs walks the profiles collection. Only document IDs are read.
func (s *FirestoreStore) ListUserIDs(ctx context.Context) ([]string, error) {
	iter := s.client.Collection(profilesCollection).Select().Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		ids = append(ids, doc.Ref.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// PutTransaction writes a transaction document keyed by its ID.
func (s *FirestoreStore) PutTransaction(ctx context.Context, t finance.Transaction) (string, error) {
	id, err := prepareID("transaction", t.UserID, t.ID)
	if err != nil {
		return "", err
	}
	t.ID = id
	if _, err := s.client.Collection(transactionsCollection).Doc(id).Set(ctx, t); err != nil {
		return "", fmt.Errorf("failed to put transaction: %w", err)
	}
	return id, nil
}

func (s *FirestoreStore) PutBudget(ctx context.Context, b finance.Budget) (string, error) {
	id, err := prepareID("budget", b.UserID, b.ID)
	if err != nil {
		return "", err
	}
	b.ID = id
	if _, err := s.client.Collection(budgetsCollection).Doc(id).Set(ctx, b); err != nil {
		return "", fmt.Errorf("failed to put budget: %w", err)
	}
	return id, nil
}

func (s *FirestoreStore) PutGoal(ctx context.Context, g finance.Goal) (string, error) {
	id, err := prepareID("goal", g.UserID, g.ID)
	if err != nil {
		return "", err
	}
	g.ID = id
	if _, err := s.client.Collection(goalsCollection).Doc(id).Set(ctx, g); err != nil {
		return "", fmt.Errorf("failed to put goal: %w", err)
	}
	return id, nil
}

// PutProfile writes the profile document keyed by user ID.
func (s *FirestoreStore) PutProfile(ctx context.Context, p finance.Profile) error {
	if p.UserID == "" {
		return fmt.Errorf("profile has no user")
	}
	if _, err := s.client.Collection(profilesCollection).Doc(p.UserID).Set(ctx, p); err != nil {
		return fmt.Errorf("failed to put profile: %w", err)
	}
	return nil
}
