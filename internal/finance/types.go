// Package finance defines the records shared by the insight engine packages.
package finance

import (
	"math"
	"strings"
	"time"
)

// Category is a spending category tag.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryUtilities     Category = "utilities"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategorySubscription  Category = "subscription"
	CategoryIncome        Category = "income"
	CategoryOther         Category = "other"
)

// TransactionType distinguishes money going out from money coming in.
// The zero value is an expense.
type TransactionType string

const (
	TransactionTypeExpense TransactionType = ""
	TransactionTypeIncome  TransactionType = "income"
)

// Transaction is a single ledger line as supplied by the caller.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId,omitempty"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Date        time.Time       `json:"date"`
	Category    Category        `json:"category,omitempty"`
	Type        TransactionType `json:"type,omitempty"`
}

// IsIncome reports whether the transaction is an income entry.
func (t Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}

// Magnitude returns the absolute amount used for expense arithmetic.
func (t Transaction) Magnitude() float64 {
	return math.Abs(t.Amount)
}

// Budget is an allocated monthly amount for a category.
type Budget struct {
	ID       string   `json:"id"`
	UserID   string   `json:"userId,omitempty"`
	Category Category `json:"category"`
	Amount   float64  `json:"amount"`
}

// GoalPriority is the priority a user declared for a goal. Higher is more important.
type GoalPriority int

const (
	PriorityLow    GoalPriority = 1
	PriorityMedium GoalPriority = 2
	PriorityHigh   GoalPriority = 3
)

// Normalized clamps the priority into the declared range, treating unset as medium.
func (p GoalPriority) Normalized() GoalPriority {
	switch {
	case p <= 0:
		return PriorityMedium
	case p > PriorityHigh:
		return PriorityHigh
	default:
		return p
	}
}

// Goal is a savings target. The engine only reads goals.
type Goal struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId,omitempty"`
	Name          string       `json:"name"`
	TargetAmount  float64      `json:"targetAmount"`
	CurrentAmount float64      `json:"currentAmount"`
	Deadline      time.Time    `json:"deadline"`
	Priority      GoalPriority `json:"priority"`
}

// Remaining returns the amount still to be saved, never negative.
func (g Goal) Remaining() float64 {
	return math.Max(0, g.TargetAmount-g.CurrentAmount)
}

// Profile carries the scalar figures used by ratio, tax and health routines.
type Profile struct {
	UserID              string  `json:"userId"`
	MonthlyIncome       float64 `json:"monthlyIncome"`
	MonthlyDebtPayments float64 `json:"monthlyDebtPayments"`
	LiquidAssets        float64 `json:"liquidAssets"`
	MonthlyInvestments  float64 `json:"monthlyInvestments"`
	TotalDebt           float64 `json:"totalDebt"`
	FilingStatus        string  `json:"filingStatus"`
	// Email receives the weekly digest. Empty opts out.
	Email string `json:"email,omitempty"`
}

// Frequency is the detected cadence of a recurring payment.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Next returns the date one period after t.
func (f Frequency) Next(t time.Time) time.Time {
	return f.Nth(t, 1)
}

// Nth returns the date n periods after anchor. Calendar cadences keep the
// anchor's day of month, clamped to the last day of shorter months, so a
// payment on the 31st falls on Feb 28 and returns to the 31st in March.
func (f Frequency) Nth(anchor time.Time, n int) time.Time {
	switch f {
	case FrequencyDaily:
		return anchor.AddDate(0, 0, n)
	case FrequencyWeekly:
		return anchor.AddDate(0, 0, 7*n)
	case FrequencyBiweekly:
		return anchor.AddDate(0, 0, 14*n)
	case FrequencyMonthly:
		return addMonthsClamped(anchor, n)
	case FrequencyQuarterly:
		return addMonthsClamped(anchor, 3*n)
	case FrequencyYearly:
		return addMonthsClamped(anchor, 12*n)
	default:
		// Unknown cadence: jump far ahead so projection loops terminate.
		return anchor.AddDate(100*n, 0, 0)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// NormalizeDescription is the grouping key for descriptions.
func NormalizeDescription(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MonthStart truncates t to the first instant of its calendar month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey formats the calendar month of t as YYYY-MM.
func MonthKey(t time.Time) string {
	return MonthStart(t).Format("2006-01")
}
