// Package forecast projects monthly spending from historical totals with a
// least squares trend line.
package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/castlemilk/pfinance/insights/internal/finance"
)

// Calibration values.
const (
	// DefaultMonths is the projection horizon used when the caller passes none.
	DefaultMonths = 3
	// MinRegressionPoints is the number of monthly totals needed for a fit.
	MinRegressionPoints = 2
	// FallbackConfidence is reported when the forecast repeats the last month.
	FallbackConfidence = 0.3
	// StableSlopeRatio is the slope, relative to the mean monthly total, below
	// which the trend counts as stable.
	StableSlopeRatio = 0.02
	// minSlopeTolerance keeps the stable band non-empty for near-zero series.
	minSlopeTolerance = 0.01
	// fullHistoryMonths is the history length at which the size factor saturates.
	fullHistoryMonths = 12
)

// Trend is the direction of a fitted spending slope.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// HistoricalPoint is a dated amount, typically one transaction.
type HistoricalPoint struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// MonthlyTotal is the summed amount of one calendar month.
type MonthlyTotal struct {
	Month  string    `json:"month"`
	Start  time.Time `json:"start"`
	Amount float64   `json:"amount"`
}

// Forecast is the projected spending of one future month.
type Forecast struct {
	Month            string  `json:"month"`
	PredictedExpense float64 `json:"predictedExpense"`
	Confidence       float64 `json:"confidence"`
	Trend            Trend   `json:"trend"`
	Recommendation   string  `json:"recommendation"`
}

// PointsFromTransactions converts expense transactions to historical points.
func PointsFromTransactions(txns []finance.Transaction) []HistoricalPoint {
	points := make([]HistoricalPoint, 0, len(txns))
	for _, t := range txns {
		if t.IsIncome() || t.Date.IsZero() {
			continue
		}
		points = append(points, HistoricalPoint{Date: t.Date, Amount: t.Magnitude()})
	}
	return points
}

// MonthlyTotals sums points per calendar month (UTC). Months between the first
// and last observed month with no points are included with a zero total.
func MonthlyTotals(points []HistoricalPoint) []MonthlyTotal {
	if len(points) == 0 {
		return nil
	}
	sums := make(map[time.Time]float64)
	var first, last time.Time
	for i, p := range points {
		m := finance.MonthStart(p.Date)
		sums[m] += p.Amount
		if i == 0 || m.Before(first) {
			first = m
		}
		if i == 0 || m.After(last) {
			last = m
		}
	}

	var totals []MonthlyTotal
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		totals = append(totals, MonthlyTotal{
			Month:  m.Format("2006-01"),
			Start:  m,
			Amount: finance.Round2(sums[m]),
		})
	}
	return totals
}

// ForecastSpending projects the next months of spending from history.
//
// An empty history or a non-positive horizon is rejected. With a single month
// of history the forecast repeats that month at FallbackConfidence.
func ForecastSpending(history []HistoricalPoint, months int) ([]Forecast, error) {
	if months <= 0 {
		return nil, finance.NewValidationError(finance.ErrInvalidMonths, "months", "must be positive, got %d", months)
	}
	totals := MonthlyTotals(history)
	if len(totals) == 0 {
		return nil, finance.NewValidationError(finance.ErrInsufficientHistory, "historical", "at least one dated point is required")
	}
	return ForecastMonthlyTotals(totals, months)
}

// ForecastMonthlyTotals is ForecastSpending over pre-aggregated, ascending totals.
func ForecastMonthlyTotals(totals []MonthlyTotal, months int) ([]Forecast, error) {
	if months <= 0 {
		return nil, finance.NewValidationError(finance.ErrInvalidMonths, "months", "must be positive, got %d", months)
	}
	if len(totals) == 0 {
		return nil, finance.NewValidationError(finance.ErrInsufficientHistory, "historical", "at least one monthly total is required")
	}

	lastMonth := totals[len(totals)-1].Start
	if len(totals) < MinRegressionPoints {
		amount := math.Max(0, totals[0].Amount)
		out := make([]Forecast, months)
		for h := 1; h <= months; h++ {
			out[h-1] = Forecast{
				Month:            lastMonth.AddDate(0, h, 0).Format("2006-01"),
				PredictedExpense: finance.Round2(amount),
				Confidence:       FallbackConfidence,
				Trend:            TrendStable,
				Recommendation:   recommendation(TrendStable, 0),
			}
		}
		return out, nil
	}

	values := make([]float64, len(totals))
	var sum float64
	for i, t := range totals {
		values[i] = t.Amount
		sum += t.Amount
	}
	meanY := sum / float64(len(values))

	reg := LinearRegression(values)
	trend := classifyTrend(reg.Slope, meanY)
	confidence := finance.Round4(fitConfidence(len(values), reg.ResidualStdDev, meanY))
	advice := recommendation(trend, reg.Slope)

	out := make([]Forecast, months)
	n := len(values)
	for h := 1; h <= months; h++ {
		predicted := math.Max(0, reg.Predict(float64(n-1+h)))
		out[h-1] = Forecast{
			Month:            lastMonth.AddDate(0, h, 0).Format("2006-01"),
			PredictedExpense: finance.Round2(predicted),
			Confidence:       confidence,
			Trend:            trend,
			Recommendation:   advice,
		}
	}
	return out, nil
}

func classifyTrend(slope, meanY float64) Trend {
	tolerance := math.Max(minSlopeTolerance, StableSlopeRatio*math.Abs(meanY))
	switch {
	case slope > tolerance:
		return TrendIncreasing
	case slope < -tolerance:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// fitConfidence grows with the number of points and shrinks with the residual
// spread relative to the mean.
func fitConfidence(n int, residualStdDev, meanY float64) float64 {
	size := math.Min(1, FallbackConfidence+(1-FallbackConfidence)*float64(n-1)/(fullHistoryMonths-1))
	spread := 0.0
	if meanY != 0 {
		spread = residualStdDev / math.Abs(meanY)
	}
	fit := 1 / (1 + spread)
	return finance.Clamp(size*fit, 0, 1)
}

func recommendation(trend Trend, slope float64) string {
	switch trend {
	case TrendIncreasing:
		return fmt.Sprintf("Spending is rising by about $%.2f per month. Review discretionary categories and set tighter budgets.", slope)
	case TrendDecreasing:
		return fmt.Sprintf("Spending is falling by about $%.2f per month. Consider moving the difference into savings goals.", -slope)
	default:
		return "Spending is stable. Keep current budgets and review them monthly."
	}
}

// AdjustBudgetRecommendation blends the current budget with the last forecast,
// weighting the forecast by its confidence. The result is never negative.
func AdjustBudgetRecommendation(currentBudget float64, forecasts []Forecast) float64 {
	current := math.Max(0, currentBudget)
	if len(forecasts) == 0 {
		return finance.Round2(current)
	}
	last := forecasts[len(forecasts)-1]
	w := finance.Clamp(last.Confidence, 0, 1)
	adjusted := w*math.Max(0, last.PredictedExpense) + (1-w)*current
	return finance.Round2(math.Max(0, adjusted))
}
