package goals

import (
	"fmt"
	"math"
	"time"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// Feasibility is how achievable a goal is given disposable income.
type Feasibility string

const (
	FeasibilityEasy        Feasibility = "easy"
	FeasibilityModerate    Feasibility = "moderate"
	FeasibilityChallenging Feasibility = "challenging"
	FeasibilityUnrealistic Feasibility = "unrealistic"
)

// Upper bounds of required/disposable for each tier. Anything above
// ChallengingMaxRatio is unrealistic.
const (
	EasyMaxRatio        = 0.30
	ModerateMaxRatio    = 0.60
	ChallengingMaxRatio = 1.00
)

// FeasibilityForRatio maps a contribution ratio to a tier.
func FeasibilityForRatio(ratio float64) Feasibility {
	switch {
	case ratio <= EasyMaxRatio:
		return FeasibilityEasy
	case ratio <= ModerateMaxRatio:
		return FeasibilityModerate
	case ratio <= ChallengingMaxRatio:
		return FeasibilityChallenging
	default:
		return FeasibilityUnrealistic
	}
}

var feasibilityAdvice = map[Feasibility]string{
	FeasibilityEasy:        "On track. The required contribution fits comfortably in your budget.",
	FeasibilityModerate:    "Achievable with steady contributions. Set up an automatic monthly transfer.",
	FeasibilityChallenging: "Possible but tight. Trim discretionary spending or extend the deadline.",
	FeasibilityUnrealistic: "Not achievable at current income. Extend the deadline or lower the target.",
}

// OptimizationResult is the contribution plan for one goal.
type OptimizationResult struct {
	GoalID              string  `json:"goalId"`
	GoalName            string  `json:"goalName"`
	MonthlyContribution float64 `json:"monthlyContribution"`
	MonthsRemaining     int     `json:"monthsRemaining"`
	// ProjectedCompletion is zero when the goal cannot be reached at all.
	ProjectedCompletion time.Time   `json:"projectedCompletion"`
	Feasibility         Feasibility `json:"feasibility"`
}

// FeasibilityAnalysis explains an OptimizationResult.
type FeasibilityAnalysis struct {
	OptimizationResult
	DisposableIncome  float64  `json:"disposableIncome"`
	ContributionRatio float64  `json:"contributionRatio"`
	Progress          Progress `json:"progress"`
	Recommendation    string   `json:"recommendation"`
}

// AnalyzeFeasibility compares the monthly contribution needed to meet the
// deadline with income left after other obligations.
func AnalyzeFeasibility(goal finance.Goal, monthlyIncome, otherObligations float64, asOf time.Time) (FeasibilityAnalysis, error) {
	if goal.Deadline.IsZero() {
		return FeasibilityAnalysis{}, finance.NewValidationError(finance.ErrInvalidArgument, "deadline", "goal %q has no deadline", goal.Name)
	}
	months := MonthsUntil(asOf, goal.Deadline)
	if months == 0 {
		return FeasibilityAnalysis{}, finance.NewValidationError(finance.ErrDeadlinePassed, "deadline", "goal %q deadline %s is not after %s",
			goal.Name, goal.Deadline.Format(time.DateOnly), asOf.Format(time.DateOnly))
	}
	required, err := CalculateOptimalContribution(goal, months)
	if err != nil {
		return FeasibilityAnalysis{}, err
	}

	disposable := monthlyIncome - otherObligations
	a := FeasibilityAnalysis{
		OptimizationResult: OptimizationResult{
			GoalID:              goal.ID,
			GoalName:            goal.Name,
			MonthlyContribution: required,
			MonthsRemaining:     months,
		},
		DisposableIncome: finance.Round2(disposable),
		Progress:         GoalProgress(goal),
	}

	switch {
	case required == 0:
		a.Feasibility = FeasibilityEasy
	case disposable <= 0:
		a.Feasibility = FeasibilityUnrealistic
	default:
		a.ContributionRatio = finance.Round4(required / disposable)
		a.Feasibility = FeasibilityForRatio(a.ContributionRatio)
	}
	a.ProjectedCompletion = projectCompletion(goal.Remaining(), required, disposable, months, asOf)
	a.Recommendation = feasibilityAdvice[a.Feasibility]
	if a.Feasibility == FeasibilityUnrealistic && !a.ProjectedCompletion.IsZero() {
		a.Recommendation = fmt.Sprintf("%s Saving all disposable income completes it by %s.",
			a.Recommendation, a.ProjectedCompletion.Format("Jan 2006"))
	}
	return a, nil
}

// projectCompletion assumes the required contribution is paid when affordable
// and all disposable income otherwise.
func projectCompletion(remaining, required, disposable float64, months int, asOf time.Time) time.Time {
	switch {
	case remaining <= 0:
		return asOf
	case required <= disposable:
		return asOf.AddDate(0, months, 0)
	case disposable > 0:
		return asOf.AddDate(0, int(math.Ceil(remaining/disposable)), 0)
	default:
		return time.Time{}
	}
}
