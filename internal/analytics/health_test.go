package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthScore(t *testing.T) {
	report := HealthScore(HealthInput{
		MonthlyIncome:       5000,
		MonthlyExpenses:     4000,
		MonthlyDebtPayments: 500,
		Budgets: []BudgetStatus{
			{Status: BudgetOK},
			{Status: BudgetWarning},
			{Status: BudgetExceeded},
			{Status: BudgetOK},
		},
	})
	// savings 0.2 → 100; budgets 2.5/4 → 62.5; debt 0.1/0.5 → 80
	assert.Equal(t, 100.0, report.SavingsScore)
	assert.Equal(t, 62.5, report.BudgetScore)
	assert.Equal(t, 80.0, report.DebtScore)
	assert.Equal(t, 83, report.Score)
	assert.Equal(t, 3, report.BudgetsOnTrack)
	assert.Equal(t, 1, report.BudgetsExceeded)
}

func TestHealthScoreBounded(t *testing.T) {
	inputs := []HealthInput{
		{},
		{MonthlyIncome: 0, MonthlyExpenses: 1e12, MonthlyDebtPayments: 1e12},
		{MonthlyIncome: 1e12},
		{MonthlyIncome: -500, MonthlyExpenses: -500, MonthlyDebtPayments: -10},
		{MonthlyIncome: math.Inf(1), MonthlyExpenses: math.Inf(1)},
		{MonthlyIncome: 100, MonthlyExpenses: 5000, MonthlyDebtPayments: 9000},
	}
	for _, in := range inputs {
		r := HealthScore(in)
		assert.GreaterOrEqual(t, r.Score, 0, "%+v", in)
		assert.LessOrEqual(t, r.Score, 100, "%+v", in)
	}
}

func TestHealthScoreExtremes(t *testing.T) {
	best := HealthScore(HealthInput{MonthlyIncome: 10000, MonthlyExpenses: 1000, Budgets: []BudgetStatus{{Status: BudgetOK}}})
	assert.Equal(t, 100, best.Score)

	worst := HealthScore(HealthInput{MonthlyIncome: 1000, MonthlyExpenses: 5000, MonthlyDebtPayments: 2000, Budgets: []BudgetStatus{{Status: BudgetExceeded}}})
	assert.Equal(t, 0, worst.Score)

	noBudgets := HealthScore(HealthInput{MonthlyIncome: 10000, MonthlyExpenses: 1000})
	assert.Equal(t, 85, noBudgets.Score)
}
