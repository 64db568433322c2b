package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/castlemilk/pfinance/insights/internal/analytics"
	"github.com/castlemilk/pfinance/insights/internal/auth"
	"github.com/castlemilk/pfinance/insights/internal/finance"
	"github.com/castlemilk/pfinance/insights/internal/forecast"
	"github.com/castlemilk/pfinance/insights/internal/patterns"
)

const (
	defaultTopCategories  = 5
	defaultLookbackMonths = 12
	defaultHorizonDays    = 30
	defaultHistoryMonths  = 12
)

// ============================================================================
// Spending Handlers
// ============================================================================

// ClassifyTransactions tags caller-supplied transactions and bare descriptions.
func (s *InsightsService) ClassifyTransactions(ctx context.Context, req *connect.Request[ClassifyTransactionsRequest]) (*connect.Response[ClassifyTransactionsResponse], error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}

	descriptions := make([]ClassifiedDescription, 0, len(req.Msg.Descriptions))
	for _, d := range req.Msg.Descriptions {
		category, keyword := s.classifier.Match(d)
		descriptions = append(descriptions, ClassifiedDescription{
			Description: d,
			Category:    category,
			Keyword:     keyword,
		})
	}

	return connect.NewResponse(&ClassifyTransactionsResponse{
		Transactions: s.classifier.ClassifyAll(req.Msg.Transactions),
		Descriptions: descriptions,
		RulesVersion: s.classifier.Version(),
	}), nil
}

// GetSpendingInsights returns the dashboard view for the current month:
// trends, category breakdown, budgets, month-over-month changes and health.
func (s *InsightsService) GetSpendingInsights(ctx context.Context, req *connect.Request[GetSpendingInsightsRequest]) (*connect.Response[GetSpendingInsightsResponse], error) {
	userID, err := resolveUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	months := req.Msg.Months
	if months < 0 {
		return nil, toConnectError("get spending insights",
			finance.NewValidationError(finance.ErrInvalidMonths, "months", "must not be negative, got %d", months))
	}
	if months == 0 {
		months = analytics.DefaultTrendMonths
	}
	topN := req.Msg.TopN
	if topN <= 0 {
		topN = defaultTopCategories
	}

	asOf := s.asOf()
	monthStart := finance.MonthStart(asOf)
	prevStart := monthStart.AddDate(0, -1, 0)
	start := monthStart.AddDate(0, -(months - 1), 0)
	if prevStart.Before(start) {
		start = prevStart
	}

	txns, err := s.classifiedTransactions(ctx, userID, &start, &asOf)
	if err != nil {
		return nil, err
	}
	var current, previous []finance.Transaction
	for _, t := range txns {
		switch {
		case !t.Date.Before(monthStart):
			current = append(current, t)
		case !t.Date.Before(prevStart):
			previous = append(previous, t)
		}
	}

	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, toConnectError("list budgets", err)
	}
	profile, _, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	savings := analytics.SavingsRateFromTransactions(current)
	statuses := analytics.BudgetVsActual(budgets, current)
	income := profile.MonthlyIncome
	if income <= 0 {
		income = savings.Income
	}

	return connect.NewResponse(&GetSpendingInsightsResponse{
		Month:         finance.MonthKey(asOf),
		Trends:        analytics.SpendingTrends(txns, months, asOf),
		Breakdown:     analytics.CategoryBreakdown(current),
		TopCategories: analytics.TopCategories(current, topN),
		Savings:       savings,
		Budgets:       statuses,
		Comparison:    analytics.CategoryComparison(current, previous),
		Health: analytics.HealthScore(analytics.HealthInput{
			MonthlyIncome:       income,
			MonthlyExpenses:     savings.Expense,
			MonthlyDebtPayments: profile.MonthlyDebtPayments,
			Budgets:             statuses,
		}),
	}), nil
}

// ============================================================================
// Pattern Handlers
// ============================================================================

// DetectRecurring finds repeating payments and projects the ones due soon.
func (s *InsightsService) DetectRecurring(ctx context.Context, req *connect.Request[DetectRecurringRequest]) (*connect.Response[DetectRecurringResponse], error) {
	userID, err := resolveUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	lookback := req.Msg.LookbackMonths
	if lookback <= 0 {
		lookback = defaultLookbackMonths
	}
	horizon := req.Msg.HorizonDays
	if horizon <= 0 {
		horizon = defaultHorizonDays
	}

	asOf := s.asOf()
	start := asOf.AddDate(0, -lookback, 0)
	txns, err := s.classifiedTransactions(ctx, userID, &start, &asOf)
	if err != nil {
		return nil, err
	}

	recurring := patterns.DetectRecurring(txns)
	return connect.NewResponse(&DetectRecurringResponse{
		Recurring: recurring,
		Upcoming:  patterns.UpcomingPayments(recurring, asOf, horizon),
	}), nil
}

// DetectAnomalies flags unusual expenses in an optional date range.
func (s *InsightsService) DetectAnomalies(ctx context.Context, req *connect.Request[DetectAnomaliesRequest]) (*connect.Response[DetectAnomaliesResponse], error) {
	userID, err := resolveUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	start, end, err := auth.ConvertDateRange(req.Msg.StartDate, req.Msg.EndDate)
	if err != nil {
		return nil, err
	}
	if req.Msg.Threshold < 0 {
		return nil, toConnectError("detect anomalies",
			finance.NewValidationError(finance.ErrInvalidArgument, "threshold", "must not be negative, got %v", req.Msg.Threshold))
	}

	var by patterns.GroupKey
	switch strings.ToLower(req.Msg.GroupBy) {
	case "", "category":
		by = patterns.GroupByCategory
	case "description":
		by = patterns.GroupByDescription
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("unknown group_by %q", req.Msg.GroupBy))
	}

	threshold := req.Msg.Threshold
	if threshold == 0 {
		threshold = s.threshold
	}

	txns, err := s.classifiedTransactions(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&DetectAnomaliesResponse{
		Anomalies: patterns.DetectAnomaliesBy(txns, threshold, by),
		Threshold: threshold,
	}), nil
}

// ============================================================================
// Forecast Handlers
// ============================================================================

// ForecastSpending projects monthly spending from complete past months.
func (s *InsightsService) ForecastSpending(ctx context.Context, req *connect.Request[ForecastSpendingRequest]) (*connect.Response[ForecastSpendingResponse], error) {
	userID, err := resolveUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	months := req.Msg.Months
	if months == 0 {
		months = forecast.DefaultMonths
	}
	historyMonths := req.Msg.HistoryMonths
	if historyMonths <= 0 {
		historyMonths = defaultHistoryMonths
	}

	history, err := s.monthlyHistory(ctx, userID, s.asOf(), historyMonths)
	if err != nil {
		return nil, err
	}
	forecasts, err := forecast.ForecastMonthlyTotals(history, months)
	if err != nil {
		return nil, toConnectError("forecast spending", err)
	}

	resp := &ForecastSpendingResponse{
		History:   history,
		Forecasts: forecasts,
	}
	if req.Msg.CurrentBudget > 0 {
		resp.AdjustedBudget = forecast.AdjustBudgetRecommendation(req.Msg.CurrentBudget, forecasts)
	}
	return connect.NewResponse(resp), nil
}

// monthlyHistory returns monthly expense totals for the complete months before asOf.
func (s *InsightsService) monthlyHistory(ctx context.Context, userID string, asOf time.Time, historyMonths int) ([]forecast.MonthlyTotal, error) {
	end := finance.MonthStart(asOf)
	start := end.AddDate(0, -historyMonths, 0)
	last := end.Add(-time.Nanosecond)

	txns, err := s.store.ListTransactions(ctx, userID, &start, &last)
	if err != nil {
		return nil, toConnectError("list transactions", err)
	}
	return forecast.MonthlyTotals(forecast.PointsFromTransactions(txns)), nil
}
