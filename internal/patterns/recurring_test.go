package patterns

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func txn(id, desc string, amount float64, date time.Time, cat finance.Category) finance.Transaction {
	return finance.Transaction{ID: id, Description: desc, Amount: amount, Date: date, Category: cat}
}

func TestDetectRecurringWeekly(t *testing.T) {
	txns := []finance.Transaction{
		txn("1", "Gym Pass", 20, day(2025, 3, 1), finance.CategoryHealth),
		txn("2", "Gym Pass", 20, day(2025, 3, 8), finance.CategoryHealth),
		txn("3", "Gym Pass", 20, day(2025, 3, 15), finance.CategoryHealth),
	}

	got := DetectRecurring(txns)
	require.Len(t, got, 1)
	assert.Equal(t, finance.FrequencyWeekly, got[0].Frequency)
	assert.Greater(t, got[0].Confidence, 0.5)
	assert.Equal(t, 20.0, got[0].EstimatedAmount)
	assert.Equal(t, day(2025, 3, 22), got[0].NextExpected)
}

func TestDetectRecurringMonthlyNetflix(t *testing.T) {
	txns := []finance.Transaction{
		txn("n1", "Netflix", 15, day(2025, 1, 15), finance.CategorySubscription),
		txn("n2", "Netflix", 15, day(2025, 2, 15), finance.CategorySubscription),
		txn("n3", "Netflix", 15, day(2025, 3, 15), finance.CategorySubscription),
	}

	got := DetectRecurring(txns)
	require.Len(t, got, 1)
	rt := got[0]
	assert.Equal(t, finance.FrequencyMonthly, rt.Frequency)
	assert.Equal(t, 15.0, rt.EstimatedAmount)
	assert.Greater(t, rt.Confidence, 0.8)
	assert.Equal(t, 3, rt.Occurrences)
	assert.Equal(t, []string{"n1", "n2", "n3"}, rt.TransactionIDs)
	assert.Equal(t, finance.CategorySubscription, rt.Category)
}

func TestDetectRecurringGroupsCaseInsensitively(t *testing.T) {
	txns := []finance.Transaction{
		txn("1", "SPOTIFY", 11.99, day(2025, 1, 3), ""),
		txn("2", "spotify ", 11.99, day(2025, 2, 3), ""),
		txn("3", "Spotify", 11.99, day(2025, 3, 3), ""),
	}
	got := DetectRecurring(txns)
	require.Len(t, got, 1)
	assert.Equal(t, "spotify", got[0].NormalizedName)
	assert.Equal(t, finance.CategoryOther, got[0].Category)
}

func TestDetectRecurringSkipsIrregularAndSingletons(t *testing.T) {
	txns := []finance.Transaction{
		// 45-day gaps fit no band.
		txn("1", "Car wash", 30, day(2025, 1, 1), ""),
		txn("2", "Car wash", 30, day(2025, 2, 15), ""),
		txn("3", "Car wash", 30, day(2025, 4, 1), ""),
		txn("4", "One-off", 500, day(2025, 1, 9), ""),
		// Same-day duplicates give no usable interval.
		txn("5", "Lunch", 12, day(2025, 1, 9), ""),
		txn("6", "Lunch", 12, day(2025, 1, 9), ""),
	}
	assert.Empty(t, DetectRecurring(txns))
}

func TestDetectRecurringIgnoresIncome(t *testing.T) {
	txns := []finance.Transaction{
		{Description: "Salary", Amount: 5000, Date: day(2025, 1, 1), Type: finance.TransactionTypeIncome},
		{Description: "Salary", Amount: 5000, Date: day(2025, 2, 1), Type: finance.TransactionTypeIncome},
	}
	assert.Empty(t, DetectRecurring(txns))
}

func TestDetectRecurringConfidenceGrowsWithOccurrences(t *testing.T) {
	build := func(n int) []finance.Transaction {
		var out []finance.Transaction
		for i := 0; i < n; i++ {
			out = append(out, txn("", "Rent", 1200, day(2024, 1, 1).AddDate(0, i, 0), ""))
		}
		return out
	}
	short := DetectRecurring(build(2))
	long := DetectRecurring(build(6))
	require.Len(t, short, 1)
	require.Len(t, long, 1)
	assert.Greater(t, long[0].Confidence, short[0].Confidence)
	assert.LessOrEqual(t, long[0].Confidence, 1.0)
}

func TestDetectRecurringIsDeterministic(t *testing.T) {
	var txns []finance.Transaction
	for i := 0; i < 4; i++ {
		txns = append(txns,
			txn("", "Netflix", 15, day(2025, 1, 10).AddDate(0, i, 0), ""),
			txn("", "Spotify", 12, day(2025, 1, 12).AddDate(0, i, 0), ""),
			txn("", "Coffee Club", 5, day(2025, 1, 1).AddDate(0, 0, 7*i), ""),
		)
	}
	first := DetectRecurring(txns)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DetectRecurring(txns))
	}
}

func TestMatchFrequency(t *testing.T) {
	tests := []struct {
		interval float64
		want     finance.Frequency
		ok       bool
	}{
		{1, finance.FrequencyDaily, true},
		{7, finance.FrequencyWeekly, true},
		{8, finance.FrequencyWeekly, true},
		{14, finance.FrequencyBiweekly, true},
		{30.5, finance.FrequencyMonthly, true},
		{91, finance.FrequencyQuarterly, true},
		{365, finance.FrequencyYearly, true},
		{3, "", false},
		{45, "", false},
		{200, "", false},
	}
	for _, tt := range tests {
		got, ok := matchFrequency(tt.interval)
		assert.Equal(t, tt.ok, ok, "interval %v", tt.interval)
		assert.Equal(t, tt.want, got, "interval %v", tt.interval)
	}
}
