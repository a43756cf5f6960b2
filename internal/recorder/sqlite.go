package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"SwingSentinel/internal/model"
)

// SQLiteRecorder persists evaluations and alerts to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers can query history while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.With().Str("component", "sqlite").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			signal        TEXT NOT NULL,
			trigger_type  TEXT,
			price         REAL,
			rsi_coarse    REAL,
			rsi_daily     REAL,
			sma           REAL,
			macd_line     REAL,
			macd_signal   REAL,
			macd_hist     REAL,
			squeeze       TEXT,
			breakdown     INTEGER,
			year_low      REAL,
			all_time_high REAL,
			reason        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_symbol_ts ON evaluations(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id         TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			symbol     TEXT NOT NULL,
			signal     TEXT NOT NULL,
			price      REAL,
			reason     TEXT,
			commentary TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps NaN, which SQLite cannot store, to NULL.
func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func (r *SQLiteRecorder) RecordEvaluation(ctx context.Context, d *model.Decision, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := d.Snapshot
	_, err := r.db.ExecContext(ctx, `INSERT INTO evaluations
		(timestamp, symbol, signal, trigger_type, price, rsi_coarse, rsi_daily, sma,
		 macd_line, macd_signal, macd_hist, squeeze, breakdown, year_low, all_time_high, reason)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		at.Unix(), d.Symbol, string(d.Signal), string(d.Trigger), nullable(d.Price),
		nullable(s.RSICoarse), nullable(s.RSIDaily), nullable(s.SMA),
		nullable(s.MACD.Line), nullable(s.MACD.Signal), nullable(s.MACD.Histogram),
		string(s.Squeeze), s.Breakdown, nullable(s.YearLow), nullable(s.AllTimeHigh), d.Reason,
	)
	if err != nil {
		return fmt.Errorf("record evaluation %s: %w", d.Symbol, err)
	}
	return nil
}

func (r *SQLiteRecorder) RecordAlert(ctx context.Context, a *model.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO alerts
		(id, timestamp, symbol, signal, price, reason, commentary)
		VALUES (?,?,?,?,?,?,?)`,
		a.ID, a.Timestamp.Unix(), a.Symbol, string(a.Signal), a.Price, a.Reason, a.Commentary,
	)
	if err != nil {
		return fmt.Errorf("record alert %s: %w", a.Symbol, err)
	}
	return nil
}

// RecentAlerts returns up to limit alerts, newest first.
func (r *SQLiteRecorder) RecentAlerts(ctx context.Context, limit int) ([]model.Alert, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, timestamp, symbol, signal, price, reason, commentary
		FROM alerts ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		var a model.Alert
		var ts int64
		var signal string
		if err := rows.Scan(&a.ID, &ts, &a.Symbol, &signal, &a.Price, &a.Reason, &a.Commentary); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Timestamp = time.Unix(ts, 0)
		a.Signal = model.Signal(signal)
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountEvaluations returns how many evaluations were stored for symbol.
func (r *SQLiteRecorder) CountEvaluations(ctx context.Context, symbol string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations WHERE symbol = ?`, symbol).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
