package forecast

import "math"

// Regression is an ordinary least squares fit of y against x = 0, 1, 2, ...
type Regression struct {
	Slope     float64
	Intercept float64
	RSquared  float64
	// ResidualStdDev is the root mean squared residual around the fitted line.
	ResidualStdDev float64
}

// Predict evaluates the fitted line at x.
func (r Regression) Predict(x float64) float64 {
	return r.Intercept + r.Slope*x
}

// LinearRegression fits a line through points indexed by position.
// Fewer than two points yield a flat line through the only value (or zero).
func LinearRegression(points []float64) Regression {
	n := float64(len(points))
	if n == 0 {
		return Regression{}
	}
	if n < 2 {
		return Regression{Intercept: points[0], RSquared: 1}
	}
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range points {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return Regression{Intercept: sumY / n, RSquared: 1}
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for i, y := range points {
		predicted := slope*float64(i) + intercept
		ssRes += (y - predicted) * (y - predicted)
		ssTot += (y - meanY) * (y - meanY)
	}
	reg := Regression{Slope: slope, Intercept: intercept, RSquared: 1}
	if ssTot > 0 {
		reg.RSquared = 1 - ssRes/ssTot
	}
	reg.ResidualStdDev = math.Sqrt(ssRes / n)
	return reg
}
