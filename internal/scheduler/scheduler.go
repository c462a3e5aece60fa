package scheduler

import (
	"context"
	"fmt"
	"strings"

	"VolScope/internal/collector"
	"VolScope/internal/errors"
	"VolScope/internal/logger"
	"VolScope/internal/metrics"
	"VolScope/internal/model"
	"VolScope/internal/notifier"
	"VolScope/internal/recorder"
	"VolScope/internal/report"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const historyLimit = 10

// Notifier delivers formatted messages.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options configures the watchlist job.
type Options struct {
	Cron      string
	Watchlist []string
	Report    report.Options
}

// Scheduler runs the watchlist on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  Notifier
	Recorder  recorder.Recorder
	Metrics   *metrics.Registry
	Log       *logger.Logger
	Opts      Options
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, n Notifier, rec recorder.Recorder, opts Options, m *metrics.Registry, log *logger.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Metrics:   m,
		Log:       log.Named("scheduler"),
		Opts:      opts,
		Ctx:       ctx,
	}
}

// Register adds the watchlist job on the configured cron spec.
func (s *Scheduler) Register() error {
	if _, err := s.Cron.AddFunc(s.Opts.Cron, s.watchlistTask); err != nil {
		return fmt.Errorf("register watchlist task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started", zap.String("cron", s.Opts.Cron), zap.Strings("watchlist", s.Opts.Watchlist))
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunNow executes the watchlist immediately.
func (s *Scheduler) RunNow() (ok, failed int) {
	return s.RunWatchlist(s.Ctx)
}

func (s *Scheduler) watchlistTask() {
	s.RunWatchlist(s.Ctx)
}

// RunWatchlist reports every watchlist ticker. A failing ticker is logged and
// reported, then the run moves on to the next one.
func (s *Scheduler) RunWatchlist(ctx context.Context) (ok, failed int) {
	s.Log.Info("running watchlist", zap.Int("tickers", len(s.Opts.Watchlist)))
	for _, symbol := range s.Opts.Watchlist {
		if ctx.Err() != nil {
			break
		}
		r, err := s.analyze(ctx, symbol)
		if err != nil {
			failed++
			s.Metrics.CountSnapshot("failed")
			s.trySend(ctx, notifier.FormatFailure(symbol, err))
			continue
		}
		ok++
		s.trySend(ctx, notifier.FormatReport(r))
		if err := s.Recorder.RecordSnapshot(recorder.FromReport(r)); err != nil {
			s.Log.Error("record snapshot", zap.String("symbol", r.Symbol), zap.Error(err))
			s.Metrics.CountSnapshot("record_failed")
			continue
		}
		s.Metrics.CountSnapshot("ok")
	}
	s.Log.Info("watchlist done", zap.Int("ok", ok), zap.Int("failed", failed))
	return ok, failed
}

func (s *Scheduler) analyze(ctx context.Context, symbol string) (*model.Report, error) {
	a, err := s.Collector.Collect(ctx, symbol)
	if err != nil {
		s.Log.Error("analyze ticker", zap.String("symbol", symbol), zap.Error(err))
		return nil, err
	}
	opts := s.Opts.Report
	opts.Lookback = string(s.Collector.Lookback)
	return report.Build(a, opts), nil
}

// HandleCommand processes a bot command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText()
	}
	// Group chats append the bot name: /hv@volscope_bot
	name := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	var arg string
	if len(fields) > 1 {
		arg = collector.NormalizeSymbol(fields[1])
	}

	switch name {
	case "/hv":
		if arg == "" {
			return "Usage: /hv TICKER"
		}
		r, err := s.analyze(ctx, arg)
		if err != nil {
			return notifier.FormatFailure(arg, err)
		}
		return notifier.FormatReport(r)
	case "/watchlist":
		return notifier.FormatWatchlist(s.Opts.Watchlist, s.Opts.Cron)
	case "/history":
		if arg == "" {
			return "Usage: /history TICKER"
		}
		h, ok := s.Recorder.(recorder.HistoryReader)
		if !ok {
			return "History is not enabled."
		}
		snaps, err := h.Recent(arg, historyLimit)
		switch {
		case errors.HasCode(err, errors.ErrCodeNoDataFound):
			return "History is not enabled."
		case err != nil:
			s.Log.Error("read history", zap.String("symbol", arg), zap.Error(err))
			return "Could not read history."
		}
		return notifier.FormatHistory(arg, snaps)
	default:
		return notifier.HelpText()
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		s.Log.Error("send notification", zap.Error(err))
	}
}
