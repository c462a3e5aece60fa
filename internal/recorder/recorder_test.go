package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"VolScope/internal/errors"
	"VolScope/internal/model"

	"github.com/go-redis/redismock/v9"
	"github.com/moznion/go-optional"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(symbol string, recordedAt time.Time, hv optional.Option[float64]) *Snapshot {
	return &Snapshot{
		Symbol:          symbol,
		Source:          "mock",
		Lookback:        "6mo",
		Window:          30,
		Observations:    125,
		AsOf:            time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		LastClose:       187.5,
		AnnualizedHV:    hv,
		LatestRollingHV: optional.None[float64](),
		RecordedAt:      recordedAt,
	}
}

func openSQLite(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "volscope.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r := openSQLite(t)
	base := time.Date(2025, 7, 1, 22, 30, 0, 0, time.UTC)

	require.NoError(t, r.RecordSnapshot(snapshot("AAPL", base, optional.Some(23.45))))
	require.NoError(t, r.RecordSnapshot(snapshot("AAPL", base.Add(24*time.Hour), optional.None[float64]())))
	require.NoError(t, r.RecordSnapshot(snapshot("MSFT", base, optional.Some(19.0))))

	got, err := r.Recent("AAPL", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, base.Add(24*time.Hour), got[0].RecordedAt)
	assert.True(t, got[0].AnnualizedHV.IsNone(), "absent values round-trip as NULL")
	assert.True(t, got[0].LatestRollingHV.IsNone())

	assert.Equal(t, base, got[1].RecordedAt)
	assert.InDelta(t, 23.45, got[1].AnnualizedHV.Unwrap(), 1e-9)
	assert.Equal(t, "mock", got[1].Source)
	assert.Equal(t, "6mo", got[1].Lookback)
	assert.Equal(t, 30, got[1].Window)
	assert.Equal(t, 125, got[1].Observations)
	assert.Equal(t, 187.5, got[1].LastClose)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), got[1].AsOf)
}

func TestSQLiteRecorder_RecentLimit(t *testing.T) {
	r := openSQLite(t)
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, r.RecordSnapshot(snapshot("SPY", base.AddDate(0, 0, i), optional.Some(float64(i)))))
	}

	got, err := r.Recent("SPY", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 4.0, got[0].AnnualizedHV.Unwrap())
	assert.Equal(t, 2.0, got[2].AnnualizedHV.Unwrap())

	none, err := r.Recent("QQQ", 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func expectedXAdd(stream, ts, hv string) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: stream,
		Values: []interface{}{
			"symbol", "AAPL",
			"source", "mock",
			"lookback", "6mo",
			"window", 30,
			"observations", 125,
			"as_of", "2025-06-30",
			"last_close", "187.5",
			"annualized_hv", hv,
			"latest_rolling_hv", "",
			"ts", ts,
		},
	}
}

func TestRedisRecorder_RecordSnapshot(t *testing.T) {
	db, mock := redismock.NewClientMock()
	r := newRedisRecorder(db, "")

	ts := time.Date(2025, 7, 1, 22, 30, 0, 0, time.UTC)
	mock.ExpectXAdd(expectedXAdd(DefaultStream, "2025-07-01T22:30:00Z", "23.45")).SetVal("1-0")

	require.NoError(t, r.RecordSnapshot(snapshot("AAPL", ts, optional.Some(23.45))))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, r.Close())
}

func TestRedisRecorder_PropagatesError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	r := newRedisRecorder(db, "custom")

	ts := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectXAdd(expectedXAdd("custom", "2025-07-02T00:00:00Z", "")).SetErr(assert.AnError)

	assert.ErrorIs(t, r.RecordSnapshot(snapshot("AAPL", ts, optional.None[float64]())), assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type failingRecorder struct{ closed bool }

func (f *failingRecorder) RecordSnapshot(*Snapshot) error { return assert.AnError }
func (f *failingRecorder) Close() error {
	f.closed = true
	return nil
}

func TestMultiRecorder(t *testing.T) {
	db := openSQLite(t)
	failing := &failingRecorder{}
	m := NewMultiRecorder(nil, failing, NewNoopRecorder(), db)

	err := m.RecordSnapshot(snapshot("AAPL", time.Now(), optional.Some(10.0)))
	assert.ErrorIs(t, err, assert.AnError)

	got, err := m.Recent("AAPL", 5)
	require.NoError(t, err)
	assert.Len(t, got, 1, "healthy recorders still receive the snapshot")

	require.NoError(t, m.Close())
	assert.True(t, failing.closed)
}

func TestMultiRecorder_NoHistory(t *testing.T) {
	m := NewMultiRecorder(NewNoopRecorder())
	_, ok := m.History()
	assert.False(t, ok)

	_, err := m.Recent("AAPL", 5)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoDataFound))
}

func TestFromReport(t *testing.T) {
	r := &model.Report{
		Symbol:          "AAPL",
		Source:          "yahoo",
		Lookback:        "1y",
		Window:          30,
		Observations:    251,
		AnnualizedHV:    optional.Some(21.5),
		LatestRollingHV: optional.Some(18.25),
		LastClose:       190,
		AsOf:            time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		GeneratedAt:     time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	s := FromReport(r)
	assert.Equal(t, "AAPL", s.Symbol)
	assert.Equal(t, "1y", s.Lookback)
	assert.Equal(t, 251, s.Observations)
	assert.Equal(t, 18.25, s.LatestRollingHV.Unwrap())
	assert.Equal(t, r.GeneratedAt, s.RecordedAt)
}
