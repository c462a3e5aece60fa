package report

import (
	"fmt"
	"time"

	"VolScope/internal/errors"
	"VolScope/internal/model"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

const (
	DefaultTitle = "Options Volatility Analysis"

	// InsufficientDataText replaces the HV figure when fewer than two returns exist.
	InsufficientDataText = "insufficient data"
)

// Options carries the labels a report is rendered with.
type Options struct {
	Title       string
	ChartTitle  string
	SeriesLabel string
	Lookback    string
	Now         func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// ChartTitle names the rolling chart after the ticker and its window.
func ChartTitle(symbol string, window int) string {
	if symbol == "" {
		return fmt.Sprintf("%d-day Historical Volatility", window)
	}
	return fmt.Sprintf("%s - %d-day Historical Volatility", symbol, window)
}

// SeriesLabel labels the rolling series. It is a historical proxy, never implied volatility.
func SeriesLabel(window int) string {
	return fmt.Sprintf("%d-day HV Proxy", window)
}

// Build turns an analysis into the view model shared by the dashboard, the CLI and Telegram.
// Chart points keep absent values so renderers can leave gaps. Table rows only cover days with a rolling HV.
func Build(a *model.Analysis, opts Options) *model.Report {
	opts = opts.withDefaults()
	if opts.ChartTitle == "" {
		opts.ChartTitle = ChartTitle(a.Prices.Symbol, a.Profile.Window)
	}
	if opts.SeriesLabel == "" {
		opts.SeriesLabel = SeriesLabel(a.Profile.Window)
	}

	r := &model.Report{
		Title:            opts.Title,
		ChartTitle:       opts.ChartTitle,
		SeriesLabel:      opts.SeriesLabel,
		Symbol:           a.Prices.Symbol,
		Source:           a.Prices.Source,
		Lookback:         opts.Lookback,
		Window:           a.Profile.Window,
		Observations:     a.Profile.Observations,
		AnnualizedHV:     a.Profile.AnnualizedHV,
		AnnualizedHVText: FormatPercent(a.Profile.AnnualizedHV),
		LatestRollingHV:  a.Profile.LatestRollingHV(),
		GeneratedAt:      opts.Now(),
	}
	if last, ok := a.Prices.Last(); ok {
		r.LastClose = last.Close
		r.AsOf = last.Date
	}

	// Returns start one day after the first close, so rolling point i pairs with price i+1.
	r.Chart = make([]model.ChartPoint, 0, len(a.Profile.Rolling))
	for i, p := range a.Profile.Rolling {
		r.Chart = append(r.Chart, model.ChartPoint{Date: p.Date, HV: p.HV})
		hv, err := p.HV.Take()
		if err != nil || i+1 >= len(a.Prices.Points) {
			continue
		}
		r.Table = append(r.Table, model.TableRow{
			Date:  p.Date,
			Close: a.Prices.Points[i+1].Close,
			HV:    hv,
		})
	}
	return r
}

// FormatPercent renders a volatility percentage with two decimals, or InsufficientDataText when absent.
func FormatPercent(v optional.Option[float64]) string {
	if v.IsNone() {
		return InsufficientDataText
	}
	return Percent(v.Unwrap())
}

// Percent renders v with two decimals and a percent sign, e.g. 23.45%.
func Percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// Price renders a close with two decimals.
func Price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

const (
	NoDataMessage       = "No data found. Please check the ticker symbol."
	FetchFailureMessage = "Error fetching data"
	InvalidInputMessage = "The price data contains invalid values."
)

// UserMessage maps a pipeline error to the text shown to end users.
// Validation failures keep their detail; source errors stay in the logs.
func UserMessage(err error) string {
	switch errors.GetCode(err) {
	case errors.ErrCodeNoDataFound:
		return NoDataMessage
	case errors.ErrCodeInvalidInput:
		var e *errors.Error
		if errors.As(err, &e) && e.Message != "" {
			return fmt.Sprintf("%s (%s)", InvalidInputMessage, e.Message)
		}
		return InvalidInputMessage
	case errors.ErrCodeInvalidRequest:
		var e *errors.Error
		if errors.As(err, &e) {
			return e.Message
		}
		return FetchFailureMessage
	default:
		return FetchFailureMessage
	}
}
