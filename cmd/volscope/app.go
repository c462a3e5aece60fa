package main

import (
	"fmt"

	"VolScope/internal/collector"
	"VolScope/internal/config"
	"VolScope/internal/logger"
	"VolScope/internal/metrics"
	"VolScope/internal/recorder"
	"VolScope/internal/report"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// app is the wiring shared by every subcommand.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	metrics   *metrics.Registry
	collector *collector.Collector
	recorder  *recorder.MultiRecorder
}

func loadApp(cmd *cli.Command, withRecorders bool) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	fetcher, err := collector.NewFetcher(collector.SourceConfig{
		Provider:      cfg.DataSource.Provider,
		BaseURL:       cfg.DataSource.BaseURL,
		APIKey:        cfg.DataSource.APIKey,
		APISecret:     cfg.DataSource.APISecret,
		Proxy:         cfg.Proxy,
		RatePerSecond: cfg.DataSource.RatePerSecond,
		Burst:         cfg.DataSource.Burst,
	})
	if err != nil {
		return nil, err
	}
	log.Info("data source ready", zap.String("provider", fetcher.Name()))

	m := metrics.NewRegistry()
	a := &app{
		cfg:       cfg,
		log:       log,
		metrics:   m,
		collector: collector.NewCollector(fetcher, collector.Lookback(cfg.DataSource.Lookback), cfg.DataSource.Window, m, log),
		recorder:  recorder.NewMultiRecorder(),
	}
	if withRecorders {
		a.recorder = a.openRecorders()
	}
	return a, nil
}

// openRecorders opens the configured stores. A store that fails to open is logged and skipped.
func (a *app) openRecorders() *recorder.MultiRecorder {
	var recs []recorder.Recorder
	if path := a.cfg.Database.SQLitePath; path != "" {
		sr, err := recorder.NewSQLiteRecorder(path, a.log)
		if err != nil {
			a.log.Warn("init sqlite recorder failed, skipping", zap.Error(err))
		} else {
			recs = append(recs, sr)
		}
	}
	if url := a.cfg.Redis.URL; url != "" {
		rr, err := recorder.NewRedisRecorder(url, a.cfg.Redis.Stream)
		if err != nil {
			a.log.Warn("init redis recorder failed, skipping", zap.Error(err))
		} else {
			a.log.Info("redis recorder ready", zap.String("stream", a.cfg.Redis.Stream))
			recs = append(recs, rr)
		}
	}
	return recorder.NewMultiRecorder(recs...)
}

func (a *app) reportOptions() report.Options {
	return report.Options{
		Title:      a.cfg.App.Title,
		ChartTitle: a.cfg.App.ChartTitle,
	}
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		a.log.Warn("close recorders", zap.Error(err))
	}
	_ = a.log.Sync()
}

// history returns the history reader, or nil when no store keeps history.
func (a *app) history() recorder.HistoryReader {
	if h, ok := a.recorder.History(); ok {
		return h
	}
	return nil
}
