package patterns

import (
	"math"
	"sort"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// DefaultAnomalyThreshold is the deviation ratio above which a transaction is flagged.
const DefaultAnomalyThreshold = 2.0

// minBaseline is the number of prior observations a group needs before it can flag.
const minBaseline = 2

// GroupKey selects how transactions are grouped to build a baseline.
type GroupKey int

const (
	// GroupByCategory uses the category, falling back to description when unset.
	GroupByCategory GroupKey = iota
	// GroupByDescription uses the normalized description.
	GroupByDescription
)

// Severity grades how far an anomaly lies from its baseline.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Anomaly is a transaction whose amount deviates from its group's history.
type Anomaly struct {
	Transaction    finance.Transaction `json:"transaction"`
	GroupKey       string              `json:"groupKey"`
	ExpectedAmount float64             `json:"expectedAmount"`
	ActualAmount   float64             `json:"actualAmount"`
	Deviation      float64             `json:"deviation"`
	Severity       Severity            `json:"severity"`
}

// DetectAnomalies flags expenses whose amount deviates from the mean of the
// earlier transactions in the same category by more than threshold standard
// deviations. A threshold <= 0 uses DefaultAnomalyThreshold.
func DetectAnomalies(txns []finance.Transaction, threshold float64) []Anomaly {
	return DetectAnomaliesBy(txns, threshold, GroupByCategory)
}

// DetectAnomaliesBy is DetectAnomalies with an explicit grouping key.
//
// Each transaction is scored only against transactions dated before it in its
// group, so the first occurrences in a group can never be flagged. Groups with
// zero spread never flag.
func DetectAnomaliesBy(txns []finance.Transaction, threshold float64, by GroupKey) []Anomaly {
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}

	ordered := make([]finance.Transaction, 0, len(txns))
	for _, t := range txns {
		if !t.IsIncome() {
			ordered = append(ordered, t)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	baselines := make(map[string]*running)
	var anomalies []Anomaly
	for _, t := range ordered {
		key := groupKey(t, by)
		base, ok := baselines[key]
		if !ok {
			base = &running{}
			baselines[key] = base
		}

		amount := t.Magnitude()
		if base.n >= minBaseline {
			if sd := base.stddev(); sd > 0 {
				deviation := math.Abs(amount-base.mean) / sd
				if deviation > threshold {
					anomalies = append(anomalies, Anomaly{
						Transaction:    t,
						GroupKey:       key,
						ExpectedAmount: finance.Round2(base.mean),
						ActualAmount:   amount,
						Deviation:      finance.Round4(deviation),
						Severity:       severityFor(deviation),
					})
				}
			}
		}
		base.add(amount)
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].Deviation > anomalies[j].Deviation
	})
	return anomalies
}

func groupKey(t finance.Transaction, by GroupKey) string {
	if by == GroupByCategory && t.Category != "" {
		return "category:" + string(t.Category)
	}
	return "description:" + finance.NormalizeDescription(t.Description)
}

func severityFor(deviation float64) Severity {
	switch {
	case deviation > 3.0:
		return SeverityHigh
	case deviation > 2.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
