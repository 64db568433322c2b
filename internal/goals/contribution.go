// Package goals turns savings goals into monthly contributions, feasibility
// tiers and a ranked multi-goal plan.
package goals

import (
	"time"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// MonthsUntil counts whole months from `from` to `to`, rounding a partial
// month up. It returns 0 when `to` is not after `from`.
func MonthsUntil(from, to time.Time) int {
	from, to = from.UTC(), to.UTC()
	if !to.After(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()-from.Month())
	if to.Day() > from.Day() {
		months++
	}
	if months < 1 {
		months = 1
	}
	return months
}

// CalculateOptimalContribution spreads the remaining amount evenly over
// monthsAvailable. The result is never negative.
func CalculateOptimalContribution(goal finance.Goal, monthsAvailable int) (float64, error) {
	if monthsAvailable <= 0 {
		return 0, finance.NewValidationError(finance.ErrInvalidMonths, "monthsAvailable", "must be positive, got %d", monthsAvailable)
	}
	return finance.Round2(goal.Remaining() / float64(monthsAvailable)), nil
}

// Milestones are the progress percentages reported for a goal.
var Milestones = []int{25, 50, 75, 100}

// Progress is how far a goal has come.
type Progress struct {
	Percent float64 `json:"percent"`
	// Milestone is the highest entry of Milestones reached, or 0.
	Milestone int `json:"milestone"`
}

// GoalProgress reports percent complete, capped at 100.
func GoalProgress(goal finance.Goal) Progress {
	if goal.TargetAmount <= 0 {
		return Progress{Percent: 100, Milestone: 100}
	}
	pct := finance.Clamp(goal.CurrentAmount/goal.TargetAmount*100, 0, 100)
	p := Progress{Percent: finance.Round2(pct)}
	for _, m := range Milestones {
		if pct >= float64(m) {
			p.Milestone = m
		}
	}
	return p
}
