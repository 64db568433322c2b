// Package analytics aggregates transaction histories into trends, category
// breakdowns, budget status and a composite health score.
package analytics

import (
	"hash/fnv"
	"sort"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// DefaultTrendMonths is the trend window used when the caller passes none.
const DefaultTrendMonths = 6

// TrendPoint is the total spent in one calendar month.
type TrendPoint struct {
	Month  string  `json:"month"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// SpendingTrends buckets expenses into the last `months` calendar months
// ending with the month of asOf, oldest first. Empty months report zero.
func SpendingTrends(txns []finance.Transaction, months int, asOf time.Time) []TrendPoint {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	end := finance.MonthStart(asOf)
	start := end.AddDate(0, -(months - 1), 0)

	sums := make(map[time.Time]float64, months)
	for _, t := range txns {
		if t.IsIncome() || t.Date.IsZero() {
			continue
		}
		m := finance.MonthStart(t.Date)
		if m.Before(start) || m.After(end) {
			continue
		}
		sums[m] += t.Magnitude()
	}

	points := make([]TrendPoint, 0, months)
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		points = append(points, TrendPoint{
			Month:  m.Format("2006-01"),
			Label:  m.Format("Jan 2006"),
			Amount: finance.Round2(sums[m]),
		})
	}
	return points
}

// CategoryBreakdownEntry is one category's share of total spending.
type CategoryBreakdownEntry struct {
	Category   finance.Category `json:"category"`
	Label      string           `json:"label"`
	Amount     float64          `json:"amount"`
	Percentage float64          `json:"percentage"`
	Color      string           `json:"color"`
	Count      int              `json:"count"`
}

var categoryColors = map[finance.Category]string{
	finance.CategoryFood:          "#F97316",
	finance.CategoryTransport:     "#3B82F6",
	finance.CategoryUtilities:     "#EAB308",
	finance.CategoryEntertainment: "#A855F7",
	finance.CategoryShopping:      "#EC4899",
	finance.CategoryHealth:        "#22C55E",
	finance.CategoryEducation:     "#14B8A6",
	finance.CategorySubscription:  "#6366F1",
	finance.CategoryIncome:        "#10B981",
	finance.CategoryOther:         "#6B7280",
}

// fallbackPalette colours categories outside the built-in taxonomy.
var fallbackPalette = []string{"#0EA5E9", "#84CC16", "#F43F5E", "#8B5CF6", "#F59E0B", "#06B6D4"}

// CategoryColor returns the display colour for a category. Unknown categories
// hash onto a fixed palette, so the result is stable across calls.
func CategoryColor(c finance.Category) string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(c))
	return fallbackPalette[h.Sum32()%uint32(len(fallbackPalette))]
}

// CategoryLabel returns a human readable title for a category tag.
func CategoryLabel(c finance.Category) string {
	return cases.Title(language.English).String(string(c))
}

// CategoryBreakdown sums expenses per category and reports each category's
// share of the total, largest first. Percentages sum to 100.
func CategoryBreakdown(txns []finance.Transaction) []CategoryBreakdownEntry {
	totals := make(map[finance.Category]float64)
	counts := make(map[finance.Category]int)
	var grand float64
	for _, t := range txns {
		if t.IsIncome() {
			continue
		}
		cat := t.Category
		if cat == "" {
			cat = finance.CategoryOther
		}
		amt := t.Magnitude()
		totals[cat] += amt
		counts[cat]++
		grand += amt
	}
	if len(totals) == 0 {
		return nil
	}

	entries := make([]CategoryBreakdownEntry, 0, len(totals))
	for cat, amt := range totals {
		entries = append(entries, CategoryBreakdownEntry{
			Category: cat,
			Label:    CategoryLabel(cat),
			Amount:   finance.Round2(amt),
			Color:    CategoryColor(cat),
			Count:    counts[cat],
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Amount != entries[j].Amount {
			return entries[i].Amount > entries[j].Amount
		}
		return entries[i].Category < entries[j].Category
	})

	if grand == 0 {
		// All zero amounts: split evenly so the shares still total 100.
		for i := range entries {
			entries[i].Percentage = finance.Round2(100 / float64(len(entries)))
		}
	} else {
		for i := range entries {
			entries[i].Percentage = finance.Round2(totals[entries[i].Category] / grand * 100)
		}
	}

	// Push the rounding residue onto the largest entry.
	var sum float64
	for _, e := range entries {
		sum += e.Percentage
	}
	entries[0].Percentage = finance.Round2(entries[0].Percentage + (100 - sum))
	return entries
}

// TopCategories returns the n largest categories of CategoryBreakdown.
func TopCategories(txns []finance.Transaction, n int) []CategoryBreakdownEntry {
	entries := CategoryBreakdown(txns)
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// SavingsResult is income minus expenses and that amount as a share of income.
type SavingsResult struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Savings float64 `json:"savings"`
	// Rate is a fraction of income; 0 when income is not positive.
	Rate float64 `json:"rate"`
}

// SavingsRate computes savings and the savings rate.
func SavingsRate(income, expenses float64) SavingsResult {
	savings := income - expenses
	res := SavingsResult{
		Income:  finance.Round2(income),
		Expense: finance.Round2(expenses),
		Savings: finance.Round2(savings),
	}
	if income > 0 {
		res.Rate = finance.Round4(savings / income)
	}
	return res
}

// SavingsRateFromTransactions sums income and expense entries and calls SavingsRate.
func SavingsRateFromTransactions(txns []finance.Transaction) SavingsResult {
	var income, expenses float64
	for _, t := range txns {
		if t.IsIncome() {
			income += t.Magnitude()
		} else {
			expenses += t.Magnitude()
		}
	}
	return SavingsRate(income, expenses)
}

// CategoryChange compares a category between two periods.
type CategoryChange struct {
	Category       finance.Category `json:"category"`
	CurrentAmount  float64          `json:"currentAmount"`
	PreviousAmount float64          `json:"previousAmount"`
	// ChangePercent is 0 when the previous period had no spending.
	ChangePercent float64 `json:"changePercent"`
}

// CategoryComparison compares per-category spending of two periods, ordered
// by current amount descending.
func CategoryComparison(current, previous []finance.Transaction) []CategoryChange {
	cur := sumByCategory(current)
	prev := sumByCategory(previous)

	all := make(map[finance.Category]struct{})
	for c := range cur {
		all[c] = struct{}{}
	}
	for c := range prev {
		all[c] = struct{}{}
	}

	changes := make([]CategoryChange, 0, len(all))
	for c := range all {
		ch := CategoryChange{
			Category:       c,
			CurrentAmount:  finance.Round2(cur[c]),
			PreviousAmount: finance.Round2(prev[c]),
		}
		if prev[c] > 0 {
			ch.ChangePercent = finance.Round2((cur[c] - prev[c]) / prev[c] * 100)
		}
		changes = append(changes, ch)
	}
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].CurrentAmount != changes[j].CurrentAmount {
			return changes[i].CurrentAmount > changes[j].CurrentAmount
		}
		return changes[i].Category < changes[j].Category
	})
	return changes
}

func sumByCategory(txns []finance.Transaction) map[finance.Category]float64 {
	out := make(map[finance.Category]float64)
	for _, t := range txns {
		if t.IsIncome() {
			continue
		}
		cat := t.Category
		if cat == "" {
			cat = finance.CategoryOther
		}
		out[cat] += t.Magnitude()
	}
	return out
}
