// Package patterns finds recurring payments and unusual transactions in a
// transaction history.
package patterns

import (
	"math"
	"sort"
	"time"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// FrequencyTolerance widens each frequency band by this fraction on both sides.
const FrequencyTolerance = 0.20

type frequencyBand struct {
	freq     finance.Frequency
	min, max float64 // nominal interval in days
}

// bands are ordered by interval; the first band containing the median gap wins.
var bands = []frequencyBand{
	{finance.FrequencyDaily, 1, 1},
	{finance.FrequencyWeekly, 7, 7},
	{finance.FrequencyBiweekly, 14, 14},
	{finance.FrequencyMonthly, 28, 31},
	{finance.FrequencyQuarterly, 89, 92},
	{finance.FrequencyYearly, 365, 366},
}

// RecurringTransaction is a payment pattern repeating at a regular interval.
type RecurringTransaction struct {
	Description         string            `json:"description"`
	NormalizedName      string            `json:"normalizedName"`
	Category            finance.Category  `json:"category"`
	Frequency           finance.Frequency `json:"frequency"`
	EstimatedAmount     float64           `json:"estimatedAmount"`
	Confidence          float64           `json:"confidence"`
	Occurrences         int               `json:"occurrences"`
	AverageIntervalDays float64           `json:"averageIntervalDays"`
	LastSeen            time.Time         `json:"lastSeen"`
	NextExpected        time.Time         `json:"nextExpected"`
	TransactionIDs      []string          `json:"transactionIds,omitempty"`
}

// DetectRecurring groups transactions by normalized description and reports
// groups whose spacing matches a known frequency. Income entries are ignored.
// Results are ordered by confidence, then name.
func DetectRecurring(txns []finance.Transaction) []RecurringTransaction {
	groups := make(map[string][]finance.Transaction)
	var keys []string
	for _, t := range txns {
		if t.IsIncome() || t.Date.IsZero() {
			continue
		}
		key := finance.NormalizeDescription(t.Description)
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], t)
	}
	sort.Strings(keys)

	var results []RecurringTransaction
	for _, key := range keys {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		if rt, ok := analyzeGroup(key, group); ok {
			results = append(results, rt)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results
}

func analyzeGroup(key string, group []finance.Transaction) (RecurringTransaction, bool) {
	sorted := append([]finance.Transaction(nil), group...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var intervals []float64
	for i := 1; i < len(sorted); i++ {
		days := daysBetween(sorted[i-1].Date, sorted[i].Date)
		if days > 0 {
			intervals = append(intervals, days)
		}
	}
	if len(intervals) == 0 {
		return RecurringTransaction{}, false
	}

	freq, ok := matchFrequency(median(intervals))
	if !ok {
		return RecurringTransaction{}, false
	}

	amounts := make([]float64, len(sorted))
	ids := make([]string, 0, len(sorted))
	for i, t := range sorted {
		amounts[i] = t.Magnitude()
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	avgAmount := mean(amounts)
	avgInterval := mean(intervals)

	last := sorted[len(sorted)-1]
	return RecurringTransaction{
		Description:         sorted[0].Description,
		NormalizedName:      key,
		Category:            mostCommonCategory(sorted),
		Frequency:           freq,
		EstimatedAmount:     finance.Round2(avgAmount),
		Confidence:          finance.Round4(recurringConfidence(intervals, avgInterval, amounts, avgAmount, len(sorted))),
		Occurrences:         len(sorted),
		AverageIntervalDays: finance.Round2(avgInterval),
		LastSeen:            last.Date,
		NextExpected:        freq.Next(last.Date),
		TransactionIDs:      ids,
	}, true
}

// matchFrequency maps a typical interval in days to a frequency band.
func matchFrequency(interval float64) (finance.Frequency, bool) {
	for _, b := range bands {
		lo := b.min * (1 - FrequencyTolerance)
		hi := b.max * (1 + FrequencyTolerance)
		if interval >= lo && interval <= hi {
			return b.freq, true
		}
	}
	return "", false
}

// recurringConfidence combines interval regularity, occurrence count and amount
// stability into a score in [0,1].
func recurringConfidence(intervals []float64, avgInterval float64, amounts []float64, avgAmount float64, occurrences int) float64 {
	regularity := 1.0
	if avgInterval > 0 {
		regularity = 1 - populationStdDev(intervals, avgInterval)/avgInterval
	}
	regularity = finance.Clamp(regularity, 0, 1)

	occurrenceBoost := math.Min(float64(occurrences)/5.0, 1.0)

	amountStability := 1.0
	if avgAmount > 0 {
		cv := populationStdDev(amounts, avgAmount) / avgAmount
		switch {
		case cv > 0.25:
			amountStability = 0.6
		case cv > 0.10:
			amountStability = 0.85
		}
	}

	return finance.Clamp(regularity*amountStability*(0.7+0.3*occurrenceBoost), 0, 1)
}

func daysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}

// mostCommonCategory picks the most frequent category, breaking ties by first appearance.
func mostCommonCategory(txns []finance.Transaction) finance.Category {
	counts := make(map[finance.Category]int)
	var order []finance.Category
	for _, t := range txns {
		if t.Category == "" {
			continue
		}
		if counts[t.Category] == 0 {
			order = append(order, t.Category)
		}
		counts[t.Category]++
	}
	best := finance.CategoryOther
	bestCount := 0
	for _, c := range order {
		if counts[c] > bestCount {
			best = c
			bestCount = counts[c]
		}
	}
	return best
}
