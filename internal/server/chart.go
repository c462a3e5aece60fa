package server

import (
	"fmt"
	"math"
	"strings"

	"VolScope/internal/model"
	"VolScope/internal/report"
)

const (
	chartWidth  = 800
	chartHeight = 320
	chartPad    = 48
)

// svgChart is the pre-computed geometry of the rolling HV line chart.
type svgChart struct {
	Width, Height int
	Left, Right   int
	Top, Bottom   int
	// Segments are polyline point lists. Absent values split the line.
	Segments  []string
	YMinLabel string
	YMaxLabel string
	XFirst    string
	XLast     string
	Empty     bool
}

func buildChart(points []model.ChartPoint) svgChart {
	c := svgChart{
		Width:  chartWidth,
		Height: chartHeight,
		Left:   chartPad,
		Right:  chartWidth - chartPad/2,
		Top:    chartPad / 2,
		Bottom: chartHeight - chartPad,
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		if v, err := p.HV.Take(); err == nil {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		c.Empty = true
		return c
	}
	if hi == lo {
		lo, hi = lo-1, hi+1
	}
	c.YMinLabel = report.Percent(lo)
	c.YMaxLabel = report.Percent(hi)
	c.XFirst = points[0].Date.Format("2006-01-02")
	c.XLast = points[len(points)-1].Date.Format("2006-01-02")

	span := float64(len(points) - 1)
	if span == 0 {
		span = 1
	}
	xScale := float64(c.Right-c.Left) / span
	yScale := float64(c.Bottom-c.Top) / (hi - lo)

	var seg []string
	flush := func() {
		if len(seg) > 0 {
			c.Segments = append(c.Segments, strings.Join(seg, " "))
			seg = nil
		}
	}
	for i, p := range points {
		v, err := p.HV.Take()
		if err != nil {
			flush()
			continue
		}
		x := float64(c.Left) + float64(i)*xScale
		y := float64(c.Bottom) - (v-lo)*yScale
		seg = append(seg, fmt.Sprintf("%.1f,%.1f", x, y))
	}
	flush()
	return c
}
