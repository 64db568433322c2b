package service

import (
	"github.com/castlemilk/pfinance/insights/internal/analytics"
	"github.com/castlemilk/pfinance/insights/internal/finance"
	"github.com/castlemilk/pfinance/insights/internal/forecast"
	"github.com/castlemilk/pfinance/insights/internal/goals"
	"github.com/castlemilk/pfinance/insights/internal/patterns"
	"github.com/castlemilk/pfinance/insights/internal/tax"
)

// ClassifyTransactionsRequest classifies caller-supplied data; nothing is read from the store.
type ClassifyTransactionsRequest struct {
	Transactions []finance.Transaction `json:"transactions,omitempty"`
	Descriptions []string              `json:"descriptions,omitempty"`
}

type ClassifiedDescription struct {
	Description string           `json:"description"`
	Category    finance.Category `json:"category"`
	Keyword     string           `json:"keyword,omitempty"`
}

type ClassifyTransactionsResponse struct {
	Transactions []finance.Transaction   `json:"transactions"`
	Descriptions []ClassifiedDescription `json:"descriptions"`
	RulesVersion string                  `json:"rulesVersion"`
}

type GetSpendingInsightsRequest struct {
	UserID string `json:"userId,omitempty"`
	// Months of trend history ending with the current month; defaults to 6.
	Months int `json:"months,omitempty"`
	// TopN limits TopCategories; defaults to 5.
	TopN int `json:"topN,omitempty"`
}

type GetSpendingInsightsResponse struct {
	Month         string                             `json:"month"`
	Trends        []analytics.TrendPoint             `json:"trends"`
	Breakdown     []analytics.CategoryBreakdownEntry `json:"breakdown"`
	TopCategories []analytics.CategoryBreakdownEntry `json:"topCategories"`
	Savings       analytics.SavingsResult            `json:"savings"`
	Budgets       []analytics.BudgetStatus           `json:"budgets"`
	Comparison    []analytics.CategoryChange         `json:"comparison"`
	Health        analytics.HealthReport             `json:"health"`
}

type DetectRecurringRequest struct {
	UserID string `json:"userId,omitempty"`
	// LookbackMonths of history to scan; defaults to 12.
	LookbackMonths int `json:"lookbackMonths,omitempty"`
	// HorizonDays of upcoming payments to project; defaults to 30.
	HorizonDays int `json:"horizonDays,omitempty"`
}

type DetectRecurringResponse struct {
	Recurring []patterns.RecurringTransaction `json:"recurring"`
	Upcoming  []patterns.UpcomingPayment      `json:"upcoming"`
}

type DetectAnomaliesRequest struct {
	UserID    string  `json:"userId,omitempty"`
	StartDate string  `json:"startDate,omitempty"`
	EndDate   string  `json:"endDate,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	// GroupBy is "category" (default) or "description".
	GroupBy string `json:"groupBy,omitempty"`
}

type DetectAnomaliesResponse struct {
	Anomalies []patterns.Anomaly `json:"anomalies"`
	Threshold float64            `json:"threshold"`
}

type ForecastSpendingRequest struct {
	UserID string `json:"userId,omitempty"`
	// Months to forecast; defaults to 3, negative values are rejected.
	Months int `json:"months"`
	// HistoryMonths of complete months fed to the model; defaults to 12.
	HistoryMonths int `json:"historyMonths,omitempty"`
	// CurrentBudget, when positive, is blended with the forecast into AdjustedBudget.
	CurrentBudget float64 `json:"currentBudget,omitempty"`
}

type ForecastSpendingResponse struct {
	History        []forecast.MonthlyTotal `json:"history"`
	Forecasts      []forecast.Forecast     `json:"forecasts"`
	AdjustedBudget float64                 `json:"adjustedBudget,omitempty"`
}

type EstimateTaxesRequest struct {
	UserID string `json:"userId,omitempty"`
	// GrossIncome is annual; zero falls back to twelve times the profile's monthly income.
	GrossIncome  float64         `json:"grossIncome,omitempty"`
	FilingStatus string          `json:"filingStatus,omitempty"`
	Deductions   []tax.Deduction `json:"deductions,omitempty"`
}

type EstimateTaxesResponse struct {
	Estimate tax.TaxEstimate `json:"estimate"`
}

type GetFinancialHealthRequest struct {
	UserID string `json:"userId,omitempty"`
}

type GetFinancialHealthResponse struct {
	Averages   MonthlyAverages        `json:"averages"`
	Ratios     tax.FinancialRatios    `json:"ratios"`
	Assessment tax.Assessment         `json:"assessment"`
	Health     analytics.HealthReport `json:"health"`
}

type AnalyzeGoalRequest struct {
	UserID string `json:"userId,omitempty"`
	// GoalID selects a stored goal; Goal is used when GoalID is empty.
	GoalID string        `json:"goalId,omitempty"`
	Goal   *finance.Goal `json:"goal,omitempty"`
	// Zero figures fall back to the profile and recent spending.
	MonthlyIncome    float64 `json:"monthlyIncome,omitempty"`
	OtherObligations float64 `json:"otherObligations,omitempty"`
}

type AnalyzeGoalResponse struct {
	Analysis goals.FeasibilityAnalysis `json:"analysis"`
}

type CreateFinancialPlanRequest struct {
	UserID string `json:"userId,omitempty"`
	// Zero figures fall back to the profile and recent spending.
	MonthlyIncome     float64 `json:"monthlyIncome,omitempty"`
	NecessaryExpenses float64 `json:"necessaryExpenses,omitempty"`
}

type CreateFinancialPlanResponse struct {
	Plan goals.FinancialPlan `json:"plan"`
}

type GetWeeklyDigestRequest struct {
	UserID string `json:"userId,omitempty"`
	// Refresh skips the cache and rebuilds the digest as of now.
	Refresh bool `json:"refresh,omitempty"`
}

type GetWeeklyDigestResponse struct {
	Digest WeeklyDigest `json:"digest"`
	Cached bool         `json:"cached"`
}
