package patterns

import (
	"sort"
	"time"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// UpcomingPayment is a projected occurrence of a recurring payment.
type UpcomingPayment struct {
	Description string            `json:"description"`
	Category    finance.Category  `json:"category"`
	Frequency   finance.Frequency `json:"frequency"`
	Amount      float64           `json:"amount"`
	DueDate     time.Time         `json:"dueDate"`
}

// UpcomingPayments projects each recurring payment forward from its last
// occurrence and returns those falling in (asOf, asOf+horizonDays], by date.
// Each occurrence is counted from LastSeen rather than from the previous one,
// so month-end payments do not drift after a short month.
func UpcomingPayments(recurring []RecurringTransaction, asOf time.Time, horizonDays int) []UpcomingPayment {
	if horizonDays <= 0 {
		return nil
	}
	end := asOf.AddDate(0, 0, horizonDays)

	var out []UpcomingPayment
	for _, rt := range recurring {
		if rt.LastSeen.IsZero() {
			continue
		}
		for n := 1; ; n++ {
			next := rt.Frequency.Nth(rt.LastSeen, n)
			if next.After(end) {
				break
			}
			if !next.After(asOf) {
				continue
			}
			out = append(out, UpcomingPayment{
				Description: rt.Description,
				Category:    rt.Category,
				Frequency:   rt.Frequency,
				Amount:      rt.EstimatedAmount,
				DueDate:     next,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}
