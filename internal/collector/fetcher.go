package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"VolScope/internal/errors"
	"VolScope/internal/model"
)

// Fetcher supplies daily closes for a symbol, ascending by date with one point per day.
// An unknown symbol or an empty window is reported as errors.ErrCodeNoDataFound.
type Fetcher interface {
	FetchDailyCloses(ctx context.Context, symbol string, lookback Lookback) (*model.PriceSeries, error)
	Name() string
}

// Lookback is a calendar window ending today, named the way Yahoo names chart ranges.
type Lookback string

const (
	Lookback1Month  Lookback = "1mo"
	Lookback3Months Lookback = "3mo"
	Lookback6Months Lookback = "6mo"
	Lookback1Year   Lookback = "1y"
	Lookback2Years  Lookback = "2y"
	Lookback5Years  Lookback = "5y"

	DefaultLookback = Lookback6Months
)

// ParseLookback validates s. An empty string yields DefaultLookback.
func ParseLookback(s string) (Lookback, error) {
	if s == "" {
		return DefaultLookback, nil
	}
	l := Lookback(s)
	if l.TradingDays() == 0 {
		return "", errors.Newf(errors.ErrCodeInvalidRequest, "unsupported lookback %q", s)
	}
	return l, nil
}

// Start returns the first calendar day of the window ending at end.
func (l Lookback) Start(end time.Time) time.Time {
	switch l {
	case Lookback1Month:
		return end.AddDate(0, -1, 0)
	case Lookback3Months:
		return end.AddDate(0, -3, 0)
	case Lookback1Year:
		return end.AddDate(-1, 0, 0)
	case Lookback2Years:
		return end.AddDate(-2, 0, 0)
	case Lookback5Years:
		return end.AddDate(-5, 0, 0)
	default:
		return end.AddDate(0, -6, 0)
	}
}

// TradingDays approximates the number of sessions in the window. Zero means unsupported.
func (l Lookback) TradingDays() int {
	switch l {
	case Lookback1Month:
		return 21
	case Lookback3Months:
		return 63
	case Lookback6Months:
		return 126
	case Lookback1Year:
		return 252
	case Lookback2Years:
		return 504
	case Lookback5Years:
		return 1260
	default:
		return 0
	}
}

// SourceConfig selects and configures a Fetcher.
type SourceConfig struct {
	Provider      string
	BaseURL       string
	APIKey        string
	APISecret     string
	Proxy         string
	RatePerSecond float64
	Burst         int
}

// NewFetcher builds the configured provider. Network providers are wrapped in a GuardedFetcher.
func NewFetcher(sc SourceConfig) (Fetcher, error) {
	var f Fetcher
	switch sc.Provider {
	case "", "yahoo":
		f = NewYahooFetcher(sc.BaseURL, sc.Proxy)
	case "alpaca":
		af, err := NewAlpacaFetcher(sc.APIKey, sc.APISecret, sc.BaseURL)
		if err != nil {
			return nil, err
		}
		f = af
	case "polygon":
		pf, err := NewPolygonFetcher(sc.APIKey)
		if err != nil {
			return nil, err
		}
		f = pf
	case "mock":
		return &MockFetcher{Price: 100}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown data source provider %q", sc.Provider)
	}
	return NewGuardedFetcher(f, sc.RatePerSecond, sc.Burst), nil
}

// truncateDay maps t to midnight UTC of its calendar day.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// normalizeDaily sorts points by date and keeps the last point seen for each day.
func normalizeDaily(points []model.PricePoint) []model.PricePoint {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	out := points[:0]
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func noData(source, symbol string, lookback Lookback) error {
	return errors.Newf(errors.ErrCodeNoDataFound, "%s: no daily data for %s over %s", source, symbol, lookback)
}

func sourceFailed(source string, cause error) error {
	return errors.Wrap(errors.ErrCodeDataSourceFailed, fmt.Sprintf("%s request failed", source), cause)
}
