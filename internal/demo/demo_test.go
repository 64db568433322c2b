package demo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlemilk/pfinance/insights/internal/finance"
	"github.com/castlemilk/pfinance/insights/internal/patterns"
	"github.com/castlemilk/pfinance/insights/internal/store"
)

var asOf = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate("demo", asOf, 42)
	b := Generate("demo", asOf, 42)
	assert.Equal(t, a, b)

	c := Generate("demo", asOf, 7)
	assert.NotEqual(t, a.Transactions, c.Transactions)
}

func TestGenerateWindow(t *testing.T) {
	ds := Generate("demo", asOf, 42)
	start := time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)

	require.NotEmpty(t, ds.Transactions)
	ids := make(map[string]bool)
	var salaries int
	for _, txn := range ds.Transactions {
		assert.Equal(t, "demo", txn.UserID)
		assert.False(t, txn.Date.After(asOf), "%s dated after asOf", txn.ID)
		assert.False(t, txn.Date.Before(start), "%s dated before window", txn.ID)
		assert.Positive(t, txn.Amount)
		assert.False(t, ids[txn.ID], "duplicate id %s", txn.ID)
		ids[txn.ID] = true
		if txn.Description == salaryDescription {
			assert.True(t, txn.IsIncome())
			salaries++
		}
	}
	// December through May, plus June 15 which is not after asOf.
	assert.Equal(t, 7, salaries)

	assert.Len(t, ds.Budgets, 7)
	require.Len(t, ds.Goals, 3)
	for _, g := range ds.Goals {
		assert.True(t, g.Deadline.After(asOf))
	}
}

func TestGenerateHasDetectableSubscriptions(t *testing.T) {
	ds := Generate("demo", asOf, 42)

	found := make(map[string]finance.Frequency)
	for _, r := range patterns.DetectRecurring(ds.Transactions) {
		found[r.NormalizedName] = r.Frequency
	}
	assert.Equal(t, finance.FrequencyMonthly, found["netflix"])
	assert.Equal(t, finance.FrequencyMonthly, found["rent payment"])
	assert.Equal(t, finance.FrequencyWeekly, found["petrol"])
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ds := Generate("demo", asOf, 42)

	counts, err := Seed(ctx, st, ds)
	require.NoError(t, err)
	assert.Equal(t, Counts{Transactions: len(ds.Transactions), Budgets: 7, Goals: 3}, counts)

	txns, err := st.ListTransactions(ctx, "demo", nil, nil)
	require.NoError(t, err)
	assert.Len(t, txns, len(ds.Transactions))

	p, err := st.GetProfile(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, 8500.0, p.MonthlyIncome)

	// Seeding twice replaces rather than duplicates.
	_, err = Seed(ctx, st, ds)
	require.NoError(t, err)
	txns, err = st.ListTransactions(ctx, "demo", nil, nil)
	require.NoError(t, err)
	assert.Len(t, txns, len(ds.Transactions))
}

type failingWriter struct {
	store.Writer
	failAfter int
	puts      int
}

func (f *failingWriter) PutTransaction(ctx context.Context, txn finance.Transaction) (string, error) {
	f.puts++
	if f.puts > f.failAfter {
		return "", errors.New("disk full")
	}
	return f.Writer.PutTransaction(ctx, txn)
}

func TestSeedStopsOnError(t *testing.T) {
	w := &failingWriter{Writer: store.NewMemoryStore(), failAfter: 3}

	counts, err := Seed(context.Background(), w, Generate("demo", asOf, 42))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 3, counts.Transactions)
	assert.Zero(t, counts.Budgets)
}
