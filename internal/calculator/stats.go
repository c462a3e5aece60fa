package calculator

import (
	"math"

	"VolScope/internal/errors"
)

// SampleStdDev computes the unbiased (n-1) standard deviation about the arithmetic mean.
func SampleStdDev(values []float64) (float64, error) {
	n := len(values)
	if n < 2 {
		return 0, errors.NewInsufficientDataError(2, n, "sample standard deviation")
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	// Flat prices give all-zero returns and exactly 0. Other constant series
	// can leave rounding residue around 1e-14.
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1)), nil
}

// Annualize converts a daily standard deviation to an annual percentage.
func Annualize(dailyStd float64) float64 {
	return dailyStd * math.Sqrt(TradingDaysPerYear) * 100
}
