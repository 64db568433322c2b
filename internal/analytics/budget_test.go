package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

func TestBudgetVsActual(t *testing.T) {
	budgets := []finance.Budget{
		{ID: "b1", Category: finance.CategoryFood, Amount: 500},
		{ID: "b2", Category: finance.CategoryTransport, Amount: 100},
		{ID: "b3", Category: finance.CategoryShopping, Amount: 200},
		{ID: "b4", Category: finance.CategoryHealth, Amount: 0},
		{ID: "b5", Category: finance.CategoryEducation, Amount: 300},
	}
	txns := []finance.Transaction{
		expense(finance.CategoryFood, 200, date(2025, 1, 2)),
		expense(finance.CategoryTransport, 90, date(2025, 1, 2)),
		expense(finance.CategoryShopping, 250, date(2025, 1, 2)),
		expense(finance.CategoryHealth, 20, date(2025, 1, 2)),
	}

	got := BudgetVsActual(budgets, txns)
	require.Len(t, got, 5)

	assert.Equal(t, BudgetStatus{BudgetID: "b1", Category: finance.CategoryFood, Budgeted: 500, Spent: 200, Remaining: 300, Percentage: 40, Status: BudgetOK}, got[0])
	assert.Equal(t, BudgetWarning, got[1].Status)
	assert.Equal(t, 90.0, got[1].Percentage)

	assert.Equal(t, BudgetExceeded, got[2].Status)
	assert.Equal(t, 0.0, got[2].Remaining)
	assert.Equal(t, 50.0, got[2].Overspent)
	assert.Equal(t, 125.0, got[2].Percentage)

	assert.Equal(t, BudgetExceeded, got[3].Status)
	assert.Equal(t, 0.0, got[3].Percentage)

	assert.Equal(t, BudgetOK, got[4].Status)
	assert.Equal(t, 300.0, got[4].Remaining)
}

func TestBudgetTierBoundaries(t *testing.T) {
	assert.Equal(t, BudgetOK, budgetTier(79.99))
	assert.Equal(t, BudgetWarning, budgetTier(80))
	assert.Equal(t, BudgetWarning, budgetTier(100))
	assert.Equal(t, BudgetExceeded, budgetTier(100.01))
}
