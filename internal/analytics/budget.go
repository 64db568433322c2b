package analytics

import (
	"math"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// BudgetStatusTier classifies how much of a budget has been used.
type BudgetStatusTier string

const (
	BudgetOK       BudgetStatusTier = "ok"
	BudgetWarning  BudgetStatusTier = "warning"
	BudgetExceeded BudgetStatusTier = "exceeded"
)

// Budget status thresholds, as a percentage of the budget spent.
const (
	WarningThresholdPercent  = 80.0
	ExceededThresholdPercent = 100.0
)

// BudgetStatus compares one budget against actual spending.
type BudgetStatus struct {
	BudgetID string           `json:"budgetId,omitempty"`
	Category finance.Category `json:"category"`
	Budgeted float64          `json:"budgeted"`
	Spent    float64          `json:"spent"`
	// Remaining is floored at zero; Overspent carries any excess.
	Remaining  float64          `json:"remaining"`
	Overspent  float64          `json:"overspent"`
	Percentage float64          `json:"percentage"`
	Status     BudgetStatusTier `json:"status"`
}

// BudgetVsActual reports spending against each budget, in budget order.
// Budgets for the same category each see that category's full spend.
func BudgetVsActual(budgets []finance.Budget, txns []finance.Transaction) []BudgetStatus {
	spent := sumByCategory(txns)

	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		budgeted := math.Max(0, b.Amount)
		s := spent[b.Category]
		var pct float64
		if budgeted > 0 {
			pct = s / budgeted * 100
		}
		status := budgetTier(pct)
		if budgeted == 0 && s > 0 {
			status = BudgetExceeded
		}
		out = append(out, BudgetStatus{
			BudgetID:   b.ID,
			Category:   b.Category,
			Budgeted:   finance.Round2(budgeted),
			Spent:      finance.Round2(s),
			Remaining:  finance.Round2(math.Max(0, budgeted-s)),
			Overspent:  finance.Round2(math.Max(0, s-budgeted)),
			Percentage: finance.Round2(pct),
			Status:     status,
		})
	}
	return out
}

func budgetTier(pct float64) BudgetStatusTier {
	switch {
	case pct > ExceededThresholdPercent:
		return BudgetExceeded
	case pct >= WarningThresholdPercent:
		return BudgetWarning
	default:
		return BudgetOK
	}
}
