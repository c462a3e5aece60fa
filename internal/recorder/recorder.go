package recorder

import (
	"time"

	"VolScope/internal/errors"
	"VolScope/internal/model"

	"github.com/moznion/go-optional"
)

// Snapshot is one persisted volatility reading for a ticker.
type Snapshot struct {
	Symbol          string
	Source          string
	Lookback        string
	Window          int
	Observations    int
	AsOf            time.Time
	LastClose       float64
	AnnualizedHV    optional.Option[float64]
	LatestRollingHV optional.Option[float64]
	RecordedAt      time.Time
}

// FromReport captures the scalar part of a report.
func FromReport(r *model.Report) *Snapshot {
	return &Snapshot{
		Symbol:          r.Symbol,
		Source:          r.Source,
		Lookback:        r.Lookback,
		Window:          r.Window,
		Observations:    r.Observations,
		AsOf:            r.AsOf,
		LastClose:       r.LastClose,
		AnnualizedHV:    r.AnnualizedHV,
		LatestRollingHV: r.LatestRollingHV,
		RecordedAt:      r.GeneratedAt,
	}
}

// Recorder persists snapshots.
type Recorder interface {
	RecordSnapshot(snap *Snapshot) error
	Close() error
}

// HistoryReader is implemented by recorders that can serve past snapshots, newest first.
type HistoryReader interface {
	Recent(symbol string, limit int) ([]Snapshot, error)
}

// MultiRecorder fans out every snapshot to all of its recorders.
type MultiRecorder struct {
	recorders []Recorder
}

// NewMultiRecorder drops nil entries. With nothing left it still behaves as a no-op.
func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	m := &MultiRecorder{}
	for _, r := range recorders {
		if r != nil {
			m.recorders = append(m.recorders, r)
		}
	}
	return m
}

func (m *MultiRecorder) RecordSnapshot(snap *Snapshot) error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.RecordSnapshot(snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recent reads from the first recorder that supports history.
func (m *MultiRecorder) Recent(symbol string, limit int) ([]Snapshot, error) {
	if h, ok := m.History(); ok {
		return h.Recent(symbol, limit)
	}
	return nil, errors.New(errors.ErrCodeNoDataFound, "no recorder keeps history")
}

// History returns the first HistoryReader among the recorders.
func (m *MultiRecorder) History() (HistoryReader, bool) {
	for _, r := range m.recorders {
		if h, ok := r.(HistoryReader); ok {
			return h, true
		}
	}
	return nil, false
}

func (m *MultiRecorder) Close() error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
