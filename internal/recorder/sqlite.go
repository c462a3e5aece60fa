package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"VolScope/internal/logger"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists snapshots to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	sq  squirrel.StatementBuilderType
	mu  sync.Mutex
	log *logger.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logger.Logger) (*SQLiteRecorder, error) {
	if log == nil {
		log = logger.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the dashboard read history while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		log: log.Named("recorder"),
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS volatility_snapshots (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at       INTEGER NOT NULL,
			symbol            TEXT NOT NULL,
			source            TEXT,
			lookback          TEXT,
			window_size       INTEGER,
			observations      INTEGER,
			as_of             INTEGER,
			last_close        REAL,
			annualized_hv     REAL,
			latest_rolling_hv REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_symbol_ts ON volatility_snapshots(symbol, recorded_at)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSnapshot(snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recordedAt := snap.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	_, err := r.sq.
		Insert("volatility_snapshots").
		Columns(
			"recorded_at", "symbol", "source", "lookback", "window_size", "observations",
			"as_of", "last_close", "annualized_hv", "latest_rolling_hv",
		).
		Values(
			recordedAt.Unix(), snap.Symbol, snap.Source, snap.Lookback, snap.Window, snap.Observations,
			snap.AsOf.Unix(), snap.LastClose, nullable(snap.AnnualizedHV), nullable(snap.LatestRollingHV),
		).
		RunWith(r.db).
		Exec()
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// Recent returns up to limit snapshots for symbol, newest first.
func (r *SQLiteRecorder) Recent(symbol string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.sq.
		Select(
			"recorded_at", "symbol", "source", "lookback", "window_size", "observations",
			"as_of", "last_close", "annualized_hv", "latest_rolling_hv",
		).
		From("volatility_snapshots").
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("recorded_at DESC", "id DESC").
		Limit(uint64(limit)).
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			s                Snapshot
			recordedAt, asOf int64
			source, lookback sql.NullString
			hv, rolling      sql.NullFloat64
		)
		if err := rows.Scan(&recordedAt, &s.Symbol, &source, &lookback, &s.Window, &s.Observations,
			&asOf, &s.LastClose, &hv, &rolling); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.RecordedAt = time.Unix(recordedAt, 0).UTC()
		s.AsOf = time.Unix(asOf, 0).UTC()
		s.Source = source.String
		s.Lookback = lookback.String
		s.AnnualizedHV = fromNull(hv)
		s.LatestRollingHV = fromNull(rolling)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}

func nullable(v optional.Option[float64]) sql.NullFloat64 {
	f, err := v.Take()
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func fromNull(v sql.NullFloat64) optional.Option[float64] {
	if !v.Valid {
		return optional.None[float64]()
	}
	return optional.Some(v.Float64)
}
