package model

import (
	"time"

	"github.com/moznion/go-optional"
)

// ReturnPoint is the log return realised on Date relative to the previous close.
type ReturnPoint struct {
	Date      time.Time
	LogReturn float64
}

// ReturnSeries is derived from a PriceSeries and is one point shorter.
type ReturnSeries struct {
	Symbol string
	Points []ReturnPoint
}

// Values returns the log returns in date order.
func (r ReturnSeries) Values() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.LogReturn
	}
	return out
}

// RollingPoint is one point of the trailing-window volatility series.
// HV is None until the window has filled.
type RollingPoint struct {
	Date time.Time
	HV   optional.Option[float64]
}

// VolatilityProfile summarises a ReturnSeries.
type VolatilityProfile struct {
	// AnnualizedHV is the whole-window HV in percent. None when fewer than two returns exist.
	AnnualizedHV optional.Option[float64]
	Rolling      []RollingPoint
	Window       int
	Observations int
}

// LatestRollingHV returns the most recent rolling value, or None.
func (v *VolatilityProfile) LatestRollingHV() optional.Option[float64] {
	if v == nil || len(v.Rolling) == 0 {
		return optional.None[float64]()
	}
	return v.Rolling[len(v.Rolling)-1].HV
}

// Analysis is the full result of one pipeline run.
type Analysis struct {
	Prices  PriceSeries
	Returns ReturnSeries
	Profile VolatilityProfile
}
