package finance

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds a currency amount half away from zero to cents.
func Round2(v float64) float64 {
	return round(v, 2)
}

// Round4 rounds a ratio to four decimal places.
func Round4(v float64) float64 {
	return round(v, 4)
}

// round passes NaN and infinities through unchanged; decimal cannot hold them.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Clamp bounds v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SafeDiv returns num/den, or 0 when den is zero.
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
