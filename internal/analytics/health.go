package analytics

import (
	"math"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// Health score weights and calibration. Weights sum to 1.
const (
	SavingsWeight = 0.4
	BudgetWeight  = 0.3
	DebtWeight    = 0.3

	// TargetSavingsRate earns the full savings component.
	TargetSavingsRate = 0.20
	// MaxDebtToIncome earns zero on the debt component.
	MaxDebtToIncome = 0.50
	// neutralBudgetScore is used when the user has no budgets.
	neutralBudgetScore = 50.0
)

// HealthInput is the per-user data the health score is computed from.
type HealthInput struct {
	MonthlyIncome       float64        `json:"monthlyIncome"`
	MonthlyExpenses     float64        `json:"monthlyExpenses"`
	MonthlyDebtPayments float64        `json:"monthlyDebtPayments"`
	Budgets             []BudgetStatus `json:"budgets,omitempty"`
}

// HealthReport is the composite score with its components, each 0..100.
type HealthReport struct {
	Score           int     `json:"score"`
	SavingsScore    float64 `json:"savingsScore"`
	BudgetScore     float64 `json:"budgetScore"`
	DebtScore       float64 `json:"debtScore"`
	SavingsRate     float64 `json:"savingsRate"`
	DebtToIncome    float64 `json:"debtToIncome"`
	BudgetsOnTrack  int     `json:"budgetsOnTrack"`
	BudgetsExceeded int     `json:"budgetsExceeded"`
}

// HealthScore combines savings, budget adherence and debt load into a score
// in [0,100]. Every component is clamped so extreme inputs stay in range.
func HealthScore(in HealthInput) HealthReport {
	savingsRate := SavingsRate(in.MonthlyIncome, in.MonthlyExpenses).Rate
	savingsScore := finance.Clamp(savingsRate/TargetSavingsRate, 0, 1) * 100

	debtToIncome := 0.0
	if in.MonthlyIncome > 0 {
		debtToIncome = math.Max(0, in.MonthlyDebtPayments) / in.MonthlyIncome
	} else if in.MonthlyDebtPayments > 0 {
		debtToIncome = MaxDebtToIncome
	}
	debtScore := (1 - finance.Clamp(debtToIncome/MaxDebtToIncome, 0, 1)) * 100

	budgetScore := neutralBudgetScore
	var onTrack, exceeded int
	if len(in.Budgets) > 0 {
		var points float64
		for _, b := range in.Budgets {
			switch b.Status {
			case BudgetOK:
				onTrack++
				points += 1
			case BudgetWarning:
				onTrack++
				points += 0.5
			case BudgetExceeded:
				exceeded++
			}
		}
		budgetScore = points / float64(len(in.Budgets)) * 100
	}

	composite := SavingsWeight*savingsScore + BudgetWeight*budgetScore + DebtWeight*debtScore
	return HealthReport{
		Score:           int(math.Round(finance.Clamp(composite, 0, 100))),
		SavingsScore:    finance.Round2(savingsScore),
		BudgetScore:     finance.Round2(budgetScore),
		DebtScore:       finance.Round2(debtScore),
		SavingsRate:     savingsRate,
		DebtToIncome:    finance.Round4(debtToIncome),
		BudgetsOnTrack:  onTrack,
		BudgetsExceeded: exceeded,
	}
}
