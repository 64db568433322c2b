// Package demo generates a realistic, reproducible ledger for a single user
// and writes it into a store. It backs the seed command and SEED_DEMO.
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/castlemilk/pfinance/insights/internal/finance"
	"github.com/castlemilk/pfinance/insights/internal/store"
)

// HistoryMonths is how far back generated transactions reach.
const HistoryMonths = 6

// Dataset is everything Seed writes for one user.
type Dataset struct {
	Profile      finance.Profile
	Transactions []finance.Transaction
	Budgets      []finance.Budget
	Goals        []finance.Goal
}

// Counts reports how many records Seed wrote.
type Counts struct {
	Transactions int `json:"transactions"`
	Budgets      int `json:"budgets"`
	Goals        int `json:"goals"`
}

type cadence int

const (
	monthly cadence = iota
	weekly
)

type expenseTemplate struct {
	description string
	minAmount   float64
	maxAmount   float64
	cadence     cadence
}

// Categories are left empty so the classifier assigns them.
var recurringExpenses = []expenseTemplate{
	{"Rent payment", 2200, 2200, monthly},
	{"Electricity bill", 120, 220, monthly},
	{"Water bill", 45, 75, monthly},
	{"Internet bill", 89, 89, monthly},
	{"Phone bill", 65, 85, monthly},
	{"Car insurance", 145, 145, monthly},
	{"Netflix", 22.99, 22.99, monthly},
	{"Spotify", 12.99, 12.99, monthly},
	{"Gym membership", 65, 65, monthly},

	{"Grocery shopping", 80, 200, weekly},
	{"Petrol", 55, 110, weekly},
}

var randomExpenses = []expenseTemplate{
	{"Coffee", 4.5, 8, 0},
	{"Lunch at cafe", 15, 35, 0},
	{"Dinner at restaurant", 45, 120, 0},
	{"Uber ride", 12, 45, 0},
	{"Parking", 5, 20, 0},
	{"Movie tickets", 18, 40, 0},
	{"Concert tickets", 60, 180, 0},
	{"Clothing", 40, 200, 0},
	{"Electronics", 50, 350, 0},
	{"Amazon purchase", 20, 150, 0},
	{"Pharmacy", 10, 60, 0},
	{"Doctor visit", 50, 150, 0},
	{"Online course", 30, 200, 0},
}

const (
	salaryDescription    = "Software Engineer Salary"
	freelanceDescription = "Freelance project"
)

// Generate builds HistoryMonths of activity ending at asOf. The same seed
// always yields the same dataset, IDs included.
func Generate(userID string, asOf time.Time, seed int64) Dataset {
	g := &generator{
		rng:    rand.New(rand.NewSource(seed)),
		userID: userID,
		end:    asOf.UTC(),
		start:  finance.MonthStart(asOf).AddDate(0, -HistoryMonths, 0),
	}

	g.recurring()
	g.discretionary()
	g.incomes()

	return Dataset{
		Profile: finance.Profile{
			UserID:              userID,
			MonthlyIncome:       8500,
			MonthlyDebtPayments: 450,
			LiquidAssets:        18000,
			MonthlyInvestments:  600,
			TotalDebt:           14000,
			FilingStatus:        "single",
		},
		Transactions: g.txns,
		Budgets:      budgets(userID),
		Goals:        goals(userID, asOf),
	}
}

type generator struct {
	rng    *rand.Rand
	userID string
	start  time.Time
	end    time.Time
	txns   []finance.Transaction
}

func (g *generator) add(description string, amount float64, date time.Time, typ finance.TransactionType) {
	if date.After(g.end) {
		return
	}
	g.txns = append(g.txns, finance.Transaction{
		ID:          fmt.Sprintf("demo-%s-%04d", g.userID, len(g.txns)+1),
		UserID:      g.userID,
		Description: description,
		Amount:      amount,
		Date:        date,
		Type:        typ,
	})
}

func (g *generator) amount(lo, hi float64) float64 {
	return finance.Round2(lo + g.rng.Float64()*(hi-lo))
}

func (g *generator) recurring() {
	for _, tmpl := range recurringExpenses {
		switch tmpl.cadence {
		case monthly:
			// Same day every month so recurrence detection locks on.
			day := 1 + g.rng.Intn(5)
			for d := g.start.AddDate(0, 0, day-1); !d.After(g.end); d = d.AddDate(0, 1, 0) {
				g.add(tmpl.description, g.amount(tmpl.minAmount, tmpl.maxAmount), d, finance.TransactionTypeExpense)
			}
		case weekly:
			for d := g.start.AddDate(0, 0, g.rng.Intn(7)); !d.After(g.end); d = d.AddDate(0, 0, 7) {
				g.add(tmpl.description, g.amount(tmpl.minAmount, tmpl.maxAmount), d, finance.TransactionTypeExpense)
			}
		}
	}
}

func (g *generator) discretionary() {
	for d := g.start; !d.After(g.end); d = d.AddDate(0, 0, 1) {
		n := g.rng.Intn(3)
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			n += 1 + g.rng.Intn(2)
		}
		for i := 0; i < n; i++ {
			tmpl := randomExpenses[g.rng.Intn(len(randomExpenses))]
			amount := g.amount(tmpl.minAmount, tmpl.maxAmount)
			// Roughly one purchase in fifty is an outlier.
			if g.rng.Intn(50) == 0 {
				amount = finance.Round2(amount * (3 + g.rng.Float64()*2))
			}
			g.add(tmpl.description, amount, d, finance.TransactionTypeExpense)
		}
	}
}

func (g *generator) incomes() {
	for m := 0; m <= HistoryMonths; m++ {
		payday := g.start.AddDate(0, m, 14)
		g.add(salaryDescription, g.amount(8400, 8600), payday, finance.TransactionTypeIncome)
	}
	for _, m := range []int{1, 3, 5} {
		date := g.start.AddDate(0, m, 9+g.rng.Intn(10))
		g.add(freelanceDescription, g.amount(800, 2000), date, finance.TransactionTypeIncome)
	}
}

func budgets(userID string) []finance.Budget {
	amounts := []struct {
		category finance.Category
		amount   float64
	}{
		{finance.CategoryFood, 1200},
		{finance.CategoryTransport, 500},
		{finance.CategoryEntertainment, 250},
		{finance.CategoryUtilities, 400},
		{finance.CategoryShopping, 400},
		{finance.CategoryHealth, 300},
		{finance.CategorySubscription, 60},
	}
	out := make([]finance.Budget, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, finance.Budget{
			ID:       fmt.Sprintf("demo-%s-budget-%s", userID, a.category),
			UserID:   userID,
			Category: a.category,
			Amount:   a.amount,
		})
	}
	return out
}

func goals(userID string, asOf time.Time) []finance.Goal {
	base := finance.MonthStart(asOf)
	return []finance.Goal{
		{
			ID:            fmt.Sprintf("demo-%s-goal-emergency", userID),
			UserID:        userID,
			Name:          "Emergency Fund",
			TargetAmount:  20000,
			CurrentAmount: 12500,
			Deadline:      base.AddDate(1, 0, 0),
			Priority:      finance.PriorityHigh,
		},
		{
			ID:            fmt.Sprintf("demo-%s-goal-japan", userID),
			UserID:        userID,
			Name:          "Japan Trip",
			TargetAmount:  5000,
			CurrentAmount: 3200,
			Deadline:      base.AddDate(0, 6, 0),
			Priority:      finance.PriorityMedium,
		},
		{
			ID:            fmt.Sprintf("demo-%s-goal-laptop", userID),
			UserID:        userID,
			Name:          "New Laptop",
			TargetAmount:  3000,
			CurrentAmount: 2800,
			Deadline:      base.AddDate(0, 3, 0),
			Priority:      finance.PriorityLow,
		},
	}
}

// Seed writes ds through w. It stops at the first failed write and returns
// what had been written up to that point.
func Seed(ctx context.Context, w store.Writer, ds Dataset) (Counts, error) {
	var counts Counts
	if err := w.PutProfile(ctx, ds.Profile); err != nil {
		return counts, fmt.Errorf("failed to seed profile: %w", err)
	}
	for _, txn := range ds.Transactions {
		if _, err := w.PutTransaction(ctx, txn); err != nil {
			return counts, fmt.Errorf("failed to seed transaction %s: %w", txn.ID, err)
		}
		counts.Transactions++
	}
	for _, b := range ds.Budgets {
		if _, err := w.PutBudget(ctx, b); err != nil {
			return counts, fmt.Errorf("failed to seed budget %s: %w", b.ID, err)
		}
		counts.Budgets++
	}
	for _, goal := range ds.Goals {
		if _, err := w.PutGoal(ctx, goal); err != nil {
			return counts, fmt.Errorf("failed to seed goal %s: %w", goal.ID, err)
		}
		counts.Goals++
	}
	return counts, nil
}
