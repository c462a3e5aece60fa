package collector

import (
	"context"
	"strings"
	"time"

	"VolScope/internal/calculator"
	"VolScope/internal/errors"
	"VolScope/internal/logger"
	"VolScope/internal/metrics"
	"VolScope/internal/model"

	"go.uber.org/zap"
)

// Collector orchestrates data fetching and the volatility pipeline for one request.
type Collector struct {
	Fetcher  Fetcher
	Lookback Lookback
	Window   int
	Metrics  *metrics.Registry
	Log      *logger.Logger
}

// NewCollector creates a new Collector with the given defaults.
func NewCollector(fetcher Fetcher, lookback Lookback, window int, m *metrics.Registry, log *logger.Logger) *Collector {
	if lookback == "" {
		lookback = DefaultLookback
	}
	if window == 0 {
		window = calculator.DefaultWindow
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Collector{Fetcher: fetcher, Lookback: lookback, Window: window, Metrics: m, Log: log.Named("collector")}
}

// Collect runs the pipeline with the collector's default lookback and window.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.Analysis, error) {
	return c.CollectWith(ctx, symbol, c.Lookback, c.Window)
}

// CollectWith fetches closes and computes the volatility profile.
// An empty series is reported as NoDataFound and never reaches the calculator.
func (c *Collector) CollectWith(ctx context.Context, symbol string, lookback Lookback, window int) (*model.Analysis, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, c.outcome(errors.New(errors.ErrCodeInvalidRequest, "ticker symbol is required"))
	}

	start := time.Now()
	series, err := c.Fetcher.FetchDailyCloses(ctx, symbol, lookback)
	c.Metrics.ObserveFetch(c.Fetcher.Name(), resultLabel(err), time.Since(start))
	if err != nil {
		c.Log.Warn("fetch failed", zap.String("symbol", symbol), zap.String("lookback", string(lookback)), zap.Error(err))
		return nil, c.outcome(err)
	}
	if series.Len() == 0 {
		return nil, c.outcome(noData(c.Fetcher.Name(), symbol, lookback))
	}

	analysis, err := calculator.Analyze(*series, window)
	if err != nil {
		c.Log.Warn("analysis rejected", zap.String("symbol", symbol), zap.Error(err))
		return nil, c.outcome(err)
	}

	c.Log.Debug("analysis complete",
		zap.String("symbol", symbol),
		zap.String("source", series.Source),
		zap.Int("prices", series.Len()),
		zap.Bool("hv_available", analysis.Profile.AnnualizedHV.IsSome()))
	c.Metrics.CountAnalysis("ok")
	return analysis, nil
}

func (c *Collector) outcome(err error) error {
	c.Metrics.CountAnalysis(errors.GetCode(err).String())
	return err
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return errors.GetCode(err).String()
}
