package goals

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// Priority score weights. Declared priority dominates; urgency is 1/months.
const (
	PriorityWeight = 0.6
	UrgencyWeight  = 0.4
)

// PlanItem is one goal's place in a FinancialPlan.
type PlanItem struct {
	Rank             int                  `json:"rank"`
	GoalID           string               `json:"goalId"`
	GoalName         string               `json:"goalName"`
	Priority         finance.GoalPriority `json:"priority"`
	MonthsRemaining  int                  `json:"monthsRemaining"`
	RequiredMonthly  float64              `json:"requiredMonthly"`
	AllocatedMonthly float64              `json:"allocatedMonthly"`
	PriorityScore    float64              `json:"priorityScore"`
	FullyFunded      bool                 `json:"fullyFunded"`
	Overdue          bool                 `json:"overdue,omitempty"`
}

// FinancialPlan ranks goals and allocates disposable income to them.
type FinancialPlan struct {
	Items            []PlanItem `json:"items"`
	TotalRequired    float64    `json:"totalRequired"`
	DisposableIncome float64    `json:"disposableIncome"`
	Unallocated      float64    `json:"unallocated"`
	Shortfall        float64    `json:"shortfall"`
	Recommendations  []string   `json:"recommendations"`
}

// PriorityScore combines declared priority with deadline urgency.
func PriorityScore(priority finance.GoalPriority, months int) float64 {
	if months < 1 {
		months = 1
	}
	p := float64(priority.Normalized()) / float64(finance.PriorityHigh)
	return finance.Round4(PriorityWeight*p + UrgencyWeight/float64(months))
}

// CreateFinancialPlan computes each goal's required contribution, ranks the
// goals and hands out disposable income (income less necessary expenses) in
// rank order. A goal whose deadline has passed is due within one month.
// Exceeding disposable income is reported in the recommendations, not as an
// error.
func CreateFinancialPlan(goals []finance.Goal, monthlyIncome, necessaryExpenses float64, asOf time.Time) (FinancialPlan, error) {
	items := make([]PlanItem, 0, len(goals))
	var total float64
	for i, g := range goals {
		if g.Deadline.IsZero() {
			return FinancialPlan{}, finance.NewValidationError(finance.ErrInvalidArgument, fmt.Sprintf("goals[%d].deadline", i), "goal %q has no deadline", g.Name)
		}
		months := MonthsUntil(asOf, g.Deadline)
		overdue := months == 0
		if overdue {
			months = 1
		}
		required, err := CalculateOptimalContribution(g, months)
		if err != nil {
			return FinancialPlan{}, err
		}
		total += required
		items = append(items, PlanItem{
			GoalID:          g.ID,
			GoalName:        g.Name,
			Priority:        g.Priority.Normalized(),
			MonthsRemaining: months,
			RequiredMonthly: required,
			PriorityScore:   PriorityScore(g.Priority, months),
			Overdue:         overdue,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].PriorityScore != items[j].PriorityScore {
			return items[i].PriorityScore > items[j].PriorityScore
		}
		return items[i].Priority > items[j].Priority
	})

	// Allocation runs in whole cents so funding agrees with Shortfall.
	disposable := finance.Round2(monthlyIncome - necessaryExpenses)
	total = finance.Round2(total)
	available := math.Max(0, disposable)
	for i := range items {
		items[i].Rank = i + 1
		alloc := finance.Round2(math.Min(items[i].RequiredMonthly, available))
		items[i].AllocatedMonthly = alloc
		items[i].FullyFunded = alloc >= items[i].RequiredMonthly
		available = finance.Round2(available - alloc)
	}

	plan := FinancialPlan{
		Items:            items,
		TotalRequired:    total,
		DisposableIncome: disposable,
		Unallocated:      available,
		Shortfall:        finance.Round2(math.Max(0, total-math.Max(0, disposable))),
	}
	plan.Recommendations = planRecommendations(plan)
	return plan, nil
}

func planRecommendations(plan FinancialPlan) []string {
	if len(plan.Items) == 0 {
		return []string{"No active goals. Add a goal to start planning."}
	}

	var recs []string
	if plan.Shortfall > 0 {
		var underfunded []string
		for _, it := range plan.Items {
			if !it.FullyFunded {
				underfunded = append(underfunded, it.GoalName)
			}
		}
		recs = append(recs, fmt.Sprintf(
			"Goals need $%.2f per month but only $%.2f is available, a shortfall of $%.2f. Scale down or extend the deadline for: %s.",
			plan.TotalRequired, math.Max(0, plan.DisposableIncome), plan.Shortfall, strings.Join(underfunded, ", ")))
	} else {
		recs = append(recs, fmt.Sprintf("All goals are funded with $%.2f per month left over.", plan.Unallocated))
	}

	for _, it := range plan.Items {
		if it.Overdue {
			recs = append(recs, fmt.Sprintf("%q is past its deadline. Set a new date.", it.GoalName))
		}
	}
	return recs
}
