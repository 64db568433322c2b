package service

import (
	"context"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/castlemilk/pfinance/insights/internal/analytics"
	"github.com/castlemilk/pfinance/insights/internal/finance"
	"github.com/castlemilk/pfinance/insights/internal/goals"
	"github.com/castlemilk/pfinance/insights/internal/tax"
)

// ============================================================================
// Tax & Health Handlers
// ============================================================================

// EstimateTaxes estimates annual federal tax. Missing income and filing status
// are taken from the user's profile.
func (s *InsightsService) EstimateTaxes(ctx context.Context, req *connect.Request[EstimateTaxesRequest]) (*connect.Response[EstimateTaxesResponse], error) {
	userID, err := resolveUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	gross := req.Msg.GrossIncome
	status := req.Msg.FilingStatus
	if gross == 0 || status == "" {
		profile, _, err := s.profile(ctx, userID)
		if err != nil {
			return nil, err
		}
		if gross == 0 {
			gross = finance.Round2(profile.MonthlyIncome * 12)
		}
		if status == "" {
			status = profile.FilingStatus
		}
	}

	estimate, err := s.taxes.CalculateEstimatedTaxes(gross, tax.ParseFilingStatus(status), req.Msg.Deductions)
	if err != nil {
		return nil, toConnectError("estimate taxes", err)
	}
	return connect.NewResponse(&EstimateTaxesResponse{Estimate: estimate}), nil
}

// GetFinancialHealth scores the user's ratios from their profile and the
// average of recent complete months.
func (s *InsightsService) GetFinancialHealth(ctx context.Context, req *connect.Request[GetFinancialHealthRequest]) (*connect.Response[GetFinancialHealthResponse], error) {
	userID, err := resolveUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	asOf := s.asOf()
	profile, _, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	averages, err := s.monthlyAverages(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}
	if profile.MonthlyIncome <= 0 {
		profile.MonthlyIncome = averages.Income
	}

	monthStart := finance.MonthStart(asOf)
	current, err := s.classifiedTransactions(ctx, userID, &monthStart, &asOf)
	if err != nil {
		return nil, err
	}
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, toConnectError("list budgets", err)
	}

	ratios := tax.CalculateFinancialRatios(tax.RatioInputFromProfile(profile, averages.Expenses))
	return connect.NewResponse(&GetFinancialHealthResponse{
		Averages:   averages,
		Ratios:     ratios,
		Assessment: tax.AssessFinancialHealth(ratios),
		Health: analytics.HealthScore(analytics.HealthInput{
			MonthlyIncome:       profile.MonthlyIncome,
			MonthlyExpenses:     averages.Expenses,
			MonthlyDebtPayments: profile.MonthlyDebtPayments,
			Budgets:             analytics.BudgetVsActual(budgets, current),
		}),
	}), nil
}

// ============================================================================
// Goal Handlers
// ============================================================================

// AnalyzeGoal reports the contribution and feasibility of one goal.
func (s *InsightsService) AnalyzeGoal(ctx context.Context, req *connect.Request[AnalyzeGoalRequest]) (*connect.Response[AnalyzeGoalResponse], error) {
	userID, err := resolveUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	var goal finance.Goal
	switch {
	case req.Msg.GoalID != "":
		stored, err := s.store.ListGoals(ctx, userID)
		if err != nil {
			return nil, toConnectError("list goals", err)
		}
		found := false
		for _, g := range stored {
			if g.ID == req.Msg.GoalID {
				goal, found = g, true
				break
			}
		}
		if !found {
			return nil, connect.NewError(connect.CodeNotFound,
				fmt.Errorf("goal %q not found", req.Msg.GoalID))
		}
	case req.Msg.Goal != nil:
		goal = *req.Msg.Goal
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("goal_id or goal is required"))
	}

	asOf := s.asOf()
	income, obligations, err := s.budgetFigures(ctx, userID, asOf, req.Msg.MonthlyIncome, req.Msg.OtherObligations)
	if err != nil {
		return nil, err
	}

	analysis, err := goals.AnalyzeFeasibility(goal, income, obligations, asOf)
	if err != nil {
		return nil, toConnectError("analyze goal", err)
	}
	return connect.NewResponse(&AnalyzeGoalResponse{Analysis: analysis}), nil
}

// CreateFinancialPlan ranks all of the user's goals and allocates disposable
// income to them.
func (s *InsightsService) CreateFinancialPlan(ctx context.Context, req *connect.Request[CreateFinancialPlanRequest]) (*connect.Response[CreateFinancialPlanResponse], error) {
	userID, err := resolveUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return nil, toConnectError("list goals", err)
	}

	asOf := s.asOf()
	income, necessary, err := s.budgetFigures(ctx, userID, asOf, req.Msg.MonthlyIncome, req.Msg.NecessaryExpenses)
	if err != nil {
		return nil, err
	}

	plan, err := goals.CreateFinancialPlan(stored, income, necessary, asOf)
	if err != nil {
		return nil, toConnectError("create financial plan", err)
	}
	return connect.NewResponse(&CreateFinancialPlanResponse{Plan: plan}), nil
}

// budgetFigures fills in whichever of income and outgoings the caller left at
// zero: income from the profile, then recent averages; outgoings from recent
// average spending.
func (s *InsightsService) budgetFigures(ctx context.Context, userID string, asOf time.Time, income, outgoings float64) (float64, float64, error) {
	if income > 0 && outgoings > 0 {
		return income, outgoings, nil
	}

	averages, err := s.monthlyAverages(ctx, userID, asOf)
	if err != nil {
		return 0, 0, err
	}
	if income <= 0 {
		profile, _, err := s.profile(ctx, userID)
		if err != nil {
			return 0, 0, err
		}
		income = profile.MonthlyIncome
		if income <= 0 {
			income = averages.Income
		}
	}
	if outgoings <= 0 {
		outgoings = averages.Expenses
	}
	return income, outgoings, nil
}
