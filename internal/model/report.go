package model

import (
	"time"

	"github.com/moznion/go-optional"
)

// ChartPoint is one x/y pair of the rolling HV chart. Absent values are gaps, not zeros.
type ChartPoint struct {
	Date time.Time
	HV   optional.Option[float64]
}

// TableRow is one row of the raw-data view. Only rows with a rolling HV are emitted.
type TableRow struct {
	Date  time.Time
	Close float64
	HV    float64
}

// Report is what the presentation collaborators consume.
type Report struct {
	Title            string
	ChartTitle       string
	SeriesLabel      string
	Symbol           string
	Source           string
	Lookback         string
	Window           int
	Observations     int
	AnnualizedHV     optional.Option[float64]
	AnnualizedHVText string
	LatestRollingHV  optional.Option[float64]
	LastClose        float64
	AsOf             time.Time
	Chart            []ChartPoint
	Table            []TableRow
	GeneratedAt      time.Time
}
