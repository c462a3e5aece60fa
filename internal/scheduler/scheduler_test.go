package scheduler

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"VolScope/internal/collector"
	"VolScope/internal/errors"
	"VolScope/internal/metrics"
	"VolScope/internal/model"
	"VolScope/internal/recorder"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return nil
}

// routedFetcher answers per symbol, failing the ones listed in errs.
type routedFetcher struct {
	mock *collector.MockFetcher
	errs map[string]error
}

func (f *routedFetcher) Name() string { return "mock" }

func (f *routedFetcher) FetchDailyCloses(ctx context.Context, symbol string, lookback collector.Lookback) (*model.PriceSeries, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	return f.mock.FetchDailyCloses(ctx, symbol, lookback)
}

func newTestScheduler(t *testing.T, rec recorder.Recorder, watchlist ...string) (*Scheduler, *captureNotifier, *metrics.Registry) {
	t.Helper()
	fetcher := &routedFetcher{
		mock: &collector.MockFetcher{Price: 120, End: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)},
		errs: map[string]error{
			"ZZZZ": errors.New(errors.ErrCodeNoDataFound, "mock: no daily data for ZZZZ"),
			"DOWN": errors.Wrap(errors.ErrCodeDataSourceFailed, "mock request failed", assert.AnError),
		},
	}
	m := metrics.NewRegistry()
	col := collector.NewCollector(fetcher, collector.Lookback6Months, 30, m, nil)
	n := &captureNotifier{}
	s := NewScheduler(context.Background(), col, n, rec, Options{Cron: "0 30 22 * * 1-5", Watchlist: watchlist}, m, nil)
	return s, n, m
}

func openSQLite(t *testing.T) *recorder.SQLiteRecorder {
	t.Helper()
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "hv.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	return rec
}

func TestRunWatchlist_IsolatesFailures(t *testing.T) {
	rec := openSQLite(t)
	s, n, m := newTestScheduler(t, rec, "AAPL", "ZZZZ", "DOWN", "MSFT")

	ok, failed := s.RunNow()
	assert.Equal(t, 2, ok)
	assert.Equal(t, 2, failed)

	require.Len(t, n.sent, 4)
	assert.Contains(t, n.sent[0], "<b>AAPL</b>")
	assert.Contains(t, n.sent[1], "No data found. Please check the ticker symbol.")
	assert.Contains(t, n.sent[2], "Error fetching data")
	assert.NotContains(t, n.sent[2], assert.AnError.Error())
	assert.Contains(t, n.sent[3], "<b>MSFT</b>")

	snaps, err := rec.Recent("AAPL", 5)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "6mo", snaps[0].Lookback)
	assert.True(t, snaps[0].AnnualizedHV.IsSome())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Snapshots.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Snapshots.WithLabelValues("failed")))
}

func TestRunWatchlist_StopsOnCancelledContext(t *testing.T) {
	s, n, _ := newTestScheduler(t, nil, "AAPL", "MSFT")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, failed := s.RunWatchlist(ctx)
	assert.Zero(t, ok)
	assert.Zero(t, failed)
	assert.Empty(t, n.sent)
}

func TestRegister(t *testing.T) {
	s, _, _ := newTestScheduler(t, nil, "AAPL")
	require.NoError(t, s.Register())
	assert.Len(t, s.Cron.Entries(), 1)

	s.Opts.Cron = "not a cron"
	assert.Error(t, s.Register())
}

func TestHandleCommand(t *testing.T) {
	rec := openSQLite(t)
	s, _, _ := newTestScheduler(t, rec, "AAPL", "SPY")
	ctx := context.Background()

	reply := s.HandleCommand(ctx, "/hv aapl")
	assert.Contains(t, reply, "<b>AAPL</b>")
	assert.Contains(t, reply, "Historical Volatility (HV):")

	reply = s.HandleCommand(ctx, "/hv@volscope_bot msft")
	assert.Contains(t, reply, "<b>MSFT</b>")

	assert.Contains(t, s.HandleCommand(ctx, "/hv ZZZZ"), "No data found")
	assert.Equal(t, "Usage: /hv TICKER", s.HandleCommand(ctx, "/hv"))

	reply = s.HandleCommand(ctx, "/watchlist")
	assert.Contains(t, reply, "• AAPL\n• SPY\n")

	assert.Contains(t, s.HandleCommand(ctx, "/history AAPL"), "No snapshots recorded yet.")
	s.RunNow()
	reply = s.HandleCommand(ctx, "/history aapl")
	assert.Contains(t, reply, "AAPL history")
	assert.Equal(t, 1, strings.Count(reply, "HV "))

	assert.Contains(t, s.HandleCommand(ctx, "hello"), "Available commands")
	assert.Contains(t, s.HandleCommand(ctx, "   "), "Available commands")
}

func TestHandleCommand_HistoryDisabled(t *testing.T) {
	s, _, _ := newTestScheduler(t, nil, "AAPL")
	assert.Equal(t, "History is not enabled.", s.HandleCommand(context.Background(), "/history AAPL"))

	s.Recorder = recorder.NewMultiRecorder(recorder.NewNoopRecorder())
	assert.Equal(t, "History is not enabled.", s.HandleCommand(context.Background(), "/history AAPL"))
}
