package tax

import (
	"math"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// RatioInput holds the monthly figures the ratios are computed from.
type RatioInput struct {
	MonthlyIncome       float64 `json:"monthlyIncome"`
	MonthlyExpenses     float64 `json:"monthlyExpenses"`
	MonthlyDebtPayments float64 `json:"monthlyDebtPayments"`
	LiquidAssets        float64 `json:"liquidAssets"`
	MonthlyInvestments  float64 `json:"monthlyInvestments"`
}

// RatioInputFromProfile combines a profile with observed monthly expenses.
func RatioInputFromProfile(p finance.Profile, monthlyExpenses float64) RatioInput {
	return RatioInput{
		MonthlyIncome:       p.MonthlyIncome,
		MonthlyExpenses:     monthlyExpenses,
		MonthlyDebtPayments: p.MonthlyDebtPayments,
		LiquidAssets:        p.LiquidAssets,
		MonthlyInvestments:  p.MonthlyInvestments,
	}
}

// FinancialRatios are fractions, except LiquidityRatio which is months of
// expenses covered by liquid assets. A zero denominator yields 0, and the
// flags below record when that 0 stands for an unbounded ratio.
type FinancialRatios struct {
	SavingsRate       float64 `json:"savingsRate"`
	DebtToIncomeRatio float64 `json:"debtToIncomeRatio"`
	LiquidityRatio    float64 `json:"liquidityRatio"`
	ExpenseRatio      float64 `json:"expenseRatio"`
	InvestmentRatio   float64 `json:"investmentRatio"`

	// UnfundedDebt is set when debt payments are positive with no income.
	UnfundedDebt bool `json:"unfundedDebt,omitempty"`
	// UnfundedExpenses is set when expenses are positive with no income.
	UnfundedExpenses bool `json:"unfundedExpenses,omitempty"`
	// UnlimitedLiquidity is set when liquid assets are positive with no expenses.
	UnlimitedLiquidity bool `json:"unlimitedLiquidity,omitempty"`
}

// CalculateFinancialRatios computes the five ratios. It never fails.
func CalculateFinancialRatios(in RatioInput) FinancialRatios {
	income := nonNegative(in.MonthlyIncome)
	expenses := nonNegative(in.MonthlyExpenses)
	debt := nonNegative(in.MonthlyDebtPayments)
	liquid := nonNegative(in.LiquidAssets)
	return FinancialRatios{
		SavingsRate:        ratio(income-expenses, income),
		DebtToIncomeRatio:  ratio(debt, income),
		LiquidityRatio:     ratio(liquid, expenses),
		ExpenseRatio:       ratio(expenses, income),
		InvestmentRatio:    ratio(nonNegative(in.MonthlyInvestments), income),
		UnfundedDebt:       income == 0 && debt > 0,
		UnfundedExpenses:   income == 0 && expenses > 0,
		UnlimitedLiquidity: expenses == 0 && liquid > 0,
	}
}

// nonNegative clamps negatives and NaN to 0.
func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func ratio(num, den float64) float64 {
	r := finance.SafeDiv(num, den)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return finance.Round4(r)
}
