package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func expense(cat finance.Category, amount float64, when time.Time) finance.Transaction {
	return finance.Transaction{Description: string(cat), Amount: amount, Date: when, Category: cat}
}

func TestSpendingTrends(t *testing.T) {
	txns := []finance.Transaction{
		expense(finance.CategoryFood, 100, date(2025, 4, 3)),
		expense(finance.CategoryFood, 50, date(2025, 4, 20)),
		expense(finance.CategoryTransport, -30, date(2025, 6, 1)),
		expense(finance.CategoryFood, 999, date(2024, 12, 1)), // outside the window
		{Amount: 5000, Date: date(2025, 5, 1), Type: finance.TransactionTypeIncome},
	}

	got := SpendingTrends(txns, 3, date(2025, 6, 15))
	require.Len(t, got, 3)
	assert.Equal(t, TrendPoint{Month: "2025-04", Label: "Apr 2025", Amount: 150}, got[0])
	assert.Equal(t, TrendPoint{Month: "2025-05", Label: "May 2025", Amount: 0}, got[1])
	assert.Equal(t, TrendPoint{Month: "2025-06", Label: "Jun 2025", Amount: 30}, got[2])

	assert.Len(t, SpendingTrends(nil, 0, date(2025, 6, 15)), DefaultTrendMonths)
}

func TestCategoryBreakdownSumsToHundred(t *testing.T) {
	txns := []finance.Transaction{
		expense(finance.CategoryFood, 33.33, date(2025, 1, 1)),
		expense(finance.CategoryTransport, 33.33, date(2025, 1, 2)),
		expense(finance.CategoryHealth, 33.34, date(2025, 1, 3)),
		expense(finance.CategoryFood, 10, date(2025, 1, 4)),
		{Description: "uncategorised", Amount: 7, Date: date(2025, 1, 5)},
	}

	got := CategoryBreakdown(txns)
	require.Len(t, got, 4)

	var sum float64
	for _, e := range got {
		sum += e.Percentage
		assert.NotEmpty(t, e.Color)
	}
	assert.InDelta(t, 100, sum, 0.01)

	assert.Equal(t, finance.CategoryFood, got[0].Category)
	assert.Equal(t, "Food", got[0].Label)
	assert.Equal(t, 43.33, got[0].Amount)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, finance.CategoryOther, got[len(got)-1].Category)
}

func TestCategoryBreakdownDeterministic(t *testing.T) {
	txns := []finance.Transaction{
		expense(finance.CategoryFood, 10, date(2025, 1, 1)),
		expense(finance.CategoryShopping, 10, date(2025, 1, 1)),
		expense(finance.CategoryHealth, 10, date(2025, 1, 1)),
		expense("pets", 10, date(2025, 1, 1)),
	}
	first := CategoryBreakdown(txns)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, CategoryBreakdown(txns))
	}
	assert.Equal(t, finance.CategoryFood, first[0].Category)
	assert.Equal(t, CategoryColor("pets"), first[2].Color)
}

func TestCategoryBreakdownEmptyAndZero(t *testing.T) {
	assert.Nil(t, CategoryBreakdown(nil))

	got := CategoryBreakdown([]finance.Transaction{
		expense(finance.CategoryFood, 0, date(2025, 1, 1)),
		expense(finance.CategoryHealth, 0, date(2025, 1, 1)),
		expense(finance.CategoryShopping, 0, date(2025, 1, 1)),
	})
	var sum float64
	for _, e := range got {
		sum += e.Percentage
	}
	assert.InDelta(t, 100, sum, 0.01)
}

func TestCategoryColorStable(t *testing.T) {
	assert.Equal(t, "#F97316", CategoryColor(finance.CategoryFood))
	assert.Equal(t, CategoryColor("crypto"), CategoryColor("crypto"))
	assert.Contains(t, fallbackPalette, CategoryColor("crypto"))
}

func TestTopCategories(t *testing.T) {
	txns := []finance.Transaction{
		expense(finance.CategoryFood, 300, date(2025, 1, 1)),
		expense(finance.CategoryTransport, 200, date(2025, 1, 1)),
		expense(finance.CategoryHealth, 100, date(2025, 1, 1)),
	}
	got := TopCategories(txns, 2)
	require.Len(t, got, 2)
	assert.Equal(t, finance.CategoryFood, got[0].Category)
	assert.Equal(t, finance.CategoryTransport, got[1].Category)
	assert.Len(t, TopCategories(txns, 10), 3)
}

func TestSavingsRate(t *testing.T) {
	got := SavingsRate(5000, 4000)
	assert.Equal(t, 1000.0, got.Savings)
	assert.Equal(t, 0.2, got.Rate)

	zero := SavingsRate(0, 1234)
	assert.Equal(t, 0.0, zero.Rate)
	assert.Equal(t, -1234.0, zero.Savings)

	assert.Equal(t, 0.0, SavingsRate(-100, 50).Rate)
	assert.Equal(t, -0.5, SavingsRate(1000, 1500).Rate)
}

func TestSavingsRateFromTransactions(t *testing.T) {
	txns := []finance.Transaction{
		{Amount: 3000, Type: finance.TransactionTypeIncome},
		{Amount: -600},
		{Amount: 900},
	}
	got := SavingsRateFromTransactions(txns)
	assert.Equal(t, 3000.0, got.Income)
	assert.Equal(t, 1500.0, got.Expense)
	assert.Equal(t, 0.5, got.Rate)
}

func TestCategoryComparison(t *testing.T) {
	current := []finance.Transaction{
		expense(finance.CategoryFood, 150, date(2025, 2, 1)),
		expense(finance.CategoryHealth, 40, date(2025, 2, 1)),
	}
	previous := []finance.Transaction{
		expense(finance.CategoryFood, 100, date(2025, 1, 1)),
		expense(finance.CategoryTransport, 60, date(2025, 1, 1)),
	}
	got := CategoryComparison(current, previous)
	require.Len(t, got, 3)
	assert.Equal(t, CategoryChange{Category: finance.CategoryFood, CurrentAmount: 150, PreviousAmount: 100, ChangePercent: 50}, got[0])
	assert.Equal(t, CategoryChange{Category: finance.CategoryHealth, CurrentAmount: 40}, got[1])
	assert.Equal(t, CategoryChange{Category: finance.CategoryTransport, PreviousAmount: 60, ChangePercent: -100}, got[2])
}
