package server

import (
	"time"

	"VolScope/internal/model"

	"github.com/moznion/go-optional"
)

func chartPoints(start time.Time, values ...optional.Option[float64]) []model.ChartPoint {
	out := make([]model.ChartPoint, len(values))
	for i, v := range values {
		out[i] = model.ChartPoint{Date: start.AddDate(0, 0, i), HV: v}
	}
	return out
}
