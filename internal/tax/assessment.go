package tax

import "math"

// Grade is a letter grade for a health assessment.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// tier awards points when a ratio passes its test.
type tier struct {
	points int
	pass   func(v float64) bool
}

// rule scores one ratio. Tiers are checked in order; the first pass wins.
// When unbounded reports true the tiers test +Inf instead of the reported
// value.
type rule struct {
	name           string
	maxPoints      int
	value          func(FinancialRatios) float64
	unbounded      func(FinancialRatios) bool
	tiers          []tier
	recommendation string
}

func (rl rule) scoreValue(r FinancialRatios) float64 {
	if rl.unbounded != nil && rl.unbounded(r) {
		return math.Inf(1)
	}
	return rl.value(r)
}

func atLeast(t float64) func(float64) bool { return func(v float64) bool { return v >= t } }
func atMost(t float64) func(float64) bool { return func(v float64) bool { return v <= t } }
func above(t float64) func(float64) bool { return func(v float64) bool { return v > t } }

// assessmentRules total 100 points.
var assessmentRules = []rule{
	{
		name:      "savings",
		maxPoints: 25,
		value:     func(r FinancialRatios) float64 { return r.SavingsRate },
		tiers: []tier{
			{25, atLeast(0.20)},
			{15, atLeast(0.10)},
			{5, above(0)},
		},
		recommendation: "Aim to save at least 20% of income; automate a transfer on payday.",
	},
	{
		name:      "debt",
		maxPoints: 25,
		value:     func(r FinancialRatios) float64 { return r.DebtToIncomeRatio },
		unbounded: func(r FinancialRatios) bool { return r.UnfundedDebt },
		tiers: []tier{
			{25, atMost(0.20)},
			{15, atMost(0.36)},
			{5, atMost(0.43)},
		},
		recommendation: "Reduce debt payments below 36% of income, starting with the highest interest balance.",
	},
	{
		name:      "liquidity",
		maxPoints: 20,
		value:     func(r FinancialRatios) float64 { return r.LiquidityRatio },
		unbounded: func(r FinancialRatios) bool { return r.UnlimitedLiquidity },
		tiers: []tier{
			{20, atLeast(6)},
			{12, atLeast(3)},
			{5, atLeast(1)},
		},
		recommendation: "Build an emergency fund covering three to six months of expenses.",
	},
	{
		name:      "expenses",
		maxPoints: 15,
		value:     func(r FinancialRatios) float64 { return r.ExpenseRatio },
		unbounded: func(r FinancialRatios) bool { return r.UnfundedExpenses },
		tiers: []tier{
			{15, atMost(0.5)},
			{10, atMost(0.8)},
			{5, atMost(1)},
		},
		recommendation: "Bring monthly expenses under 80% of income by trimming discretionary categories.",
	},
	{
		name:      "investment",
		maxPoints: 15,
		value:     func(r FinancialRatios) float64 { return r.InvestmentRatio },
		tiers: []tier{
			{15, atLeast(0.15)},
			{8, atLeast(0.05)},
			{3, above(0)},
		},
		recommendation: "Invest at least 15% of income for long-term goals.",
	},
}

var gradeFloors = []struct {
	min   int
	grade Grade
}{
	{90, GradeA},
	{80, GradeB},
	{70, GradeC},
	{60, GradeD},
}

var gradeSummaries = map[Grade]string{
	GradeA: "Excellent financial health. Keep your current habits.",
	GradeB: "Good financial health with a few areas to tighten.",
	GradeC: "Fair financial health. Several ratios need attention.",
	GradeD: "Weak financial health. Prioritise savings and debt reduction.",
	GradeF: "Poor financial health. Focus on stabilising cash flow first.",
}

// RuleScore is the points one ratio earned.
type RuleScore struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Points    int     `json:"points"`
	MaxPoints int     `json:"maxPoints"`
}

// Assessment grades a set of financial ratios.
type Assessment struct {
	Ratios          FinancialRatios `json:"ratios"`
	Score           int             `json:"score"`
	Grade           Grade           `json:"grade"`
	Summary         string          `json:"summary"`
	Rules           []RuleScore     `json:"rules"`
	Recommendations []string        `json:"recommendations"`
}

// AssessFinancialHealth scores each ratio against fixed thresholds, sums the
// points into a 0..100 score and maps it to a letter grade. Every ratio that
// misses full marks adds its recommendation, in rule order. Debt or expenses
// with no income score nothing on those rules; liquid assets with no expenses
// earn full liquidity marks.
func AssessFinancialHealth(r FinancialRatios) Assessment {
	a := Assessment{Ratios: r, Rules: make([]RuleScore, 0, len(assessmentRules))}
	for _, rl := range assessmentRules {
		v := rl.value(r)
		sv := rl.scoreValue(r)
		var pts int
		for _, t := range rl.tiers {
			if t.pass(sv) {
				pts = t.points
				break
			}
		}
		a.Score += pts
		a.Rules = append(a.Rules, RuleScore{Name: rl.name, Value: v, Points: pts, MaxPoints: rl.maxPoints})
		if pts < rl.maxPoints {
			a.Recommendations = append(a.Recommendations, rl.recommendation)
		}
	}
	a.Grade = gradeFor(a.Score)
	a.Summary = gradeSummaries[a.Grade]
	if len(a.Recommendations) == 0 {
		a.Recommendations = []string{"No changes needed; review these ratios quarterly."}
	}
	return a
}

func gradeFor(score int) Grade {
	for _, f := range gradeFloors {
		if score >= f.min {
			return f.grade
		}
	}
	return GradeF
}
