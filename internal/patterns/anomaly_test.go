package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

func TestDetectAnomaliesFlagsOutlier(t *testing.T) {
	txns := []finance.Transaction{
		txn("1", "Groceries", 50, day(2025, 1, 1), finance.CategoryFood),
		txn("2", "Groceries", 52, day(2025, 1, 8), finance.CategoryFood),
		txn("3", "Groceries", 51, day(2025, 1, 15), finance.CategoryFood),
		txn("4", "Groceries", 52, day(2025, 1, 22), finance.CategoryFood),
		txn("5", "Party catering", 400, day(2025, 1, 29), finance.CategoryFood),
	}

	got := DetectAnomalies(txns, 2.0)
	require.Len(t, got, 1)
	a := got[0]
	assert.Equal(t, "5", a.Transaction.ID)
	assert.Equal(t, 51.25, a.ExpectedAmount)
	assert.Equal(t, 400.0, a.ActualAmount)
	assert.Greater(t, a.Deviation, 2.0)
	assert.Equal(t, SeverityHigh, a.Severity)
	assert.Equal(t, "category:food", a.GroupKey)
}

func TestDetectAnomaliesSingleTransactionNeverFlagged(t *testing.T) {
	txns := []finance.Transaction{
		txn("1", "Tiny", 1, day(2025, 1, 1), finance.CategoryShopping),
		txn("2", "Tiny", 2, day(2025, 1, 2), finance.CategoryShopping),
		txn("3", "Tiny", 1, day(2025, 1, 3), finance.CategoryShopping),
		txn("4", "Huge TV", 10000, day(2025, 1, 4), finance.CategoryEducation),
	}
	for _, a := range DetectAnomalies(txns, 2.0) {
		assert.NotEqual(t, finance.CategoryEducation, a.Transaction.Category)
	}
}

func TestDetectAnomaliesNeedsTwoPriors(t *testing.T) {
	// The second point in a group has only one prior and cannot be flagged.
	txns := []finance.Transaction{
		txn("1", "Taxi", 10, day(2025, 1, 1), finance.CategoryTransport),
		txn("2", "Taxi", 900, day(2025, 1, 2), finance.CategoryTransport),
	}
	assert.Empty(t, DetectAnomalies(txns, 2.0))
}

func TestDetectAnomaliesZeroSpreadNeverFlags(t *testing.T) {
	txns := []finance.Transaction{
		txn("1", "Bus", 3, day(2025, 1, 1), finance.CategoryTransport),
		txn("2", "Bus", 3, day(2025, 1, 2), finance.CategoryTransport),
		txn("3", "Bus", 3, day(2025, 1, 3), finance.CategoryTransport),
		txn("4", "Bus", 300, day(2025, 1, 4), finance.CategoryTransport),
	}
	assert.Empty(t, DetectAnomalies(txns, 2.0))
}

func TestDetectAnomaliesDefaultThreshold(t *testing.T) {
	txns := []finance.Transaction{
		txn("1", "Power", 95, day(2025, 1, 1), finance.CategoryUtilities),
		txn("2", "Power", 105, day(2025, 2, 1), finance.CategoryUtilities),
		txn("3", "Power", 100, day(2025, 3, 1), finance.CategoryUtilities),
		txn("4", "Power", 117.5, day(2025, 4, 1), finance.CategoryUtilities),
	}
	// mean 100, sd 5 → deviation 3.5
	withDefault := DetectAnomalies(txns, 0)
	require.Len(t, withDefault, 1)
	assert.InDelta(t, 3.5, withDefault[0].Deviation, 1e-9)
	assert.Empty(t, DetectAnomalies(txns, 4))
}

func TestDetectAnomaliesByDescription(t *testing.T) {
	txns := []finance.Transaction{
		txn("1", "Coffee", 4, day(2025, 1, 1), finance.CategoryFood),
		txn("2", "Coffee", 5, day(2025, 1, 2), finance.CategoryFood),
		txn("3", "Coffee", 4.5, day(2025, 1, 3), finance.CategoryFood),
		txn("4", "Dinner", 80, day(2025, 1, 4), finance.CategoryFood),
	}
	assert.NotEmpty(t, DetectAnomalies(txns, 2.0))
	assert.Empty(t, DetectAnomaliesBy(txns, 2.0, GroupByDescription))
}

func TestDetectAnomaliesUsesChronologicalOrder(t *testing.T) {
	// Supplied out of order; the outlier is dated first so it has no baseline.
	txns := []finance.Transaction{
		txn("2", "Gift", 20, day(2025, 1, 2), finance.CategoryShopping),
		txn("3", "Gift", 22, day(2025, 1, 3), finance.CategoryShopping),
		txn("1", "Gift", 900, day(2025, 1, 1), finance.CategoryShopping),
		txn("4", "Gift", 21, day(2025, 1, 4), finance.CategoryShopping),
	}
	for _, a := range DetectAnomalies(txns, 2.0) {
		assert.NotEqual(t, "1", a.Transaction.ID)
	}
}
