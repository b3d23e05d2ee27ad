package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"gpwquant/internal/util"
)

// Compile-time interface check.
var _ RunStore = (*SQLiteStore)(nil)

// ErrRunNotFound is returned by GetRun when no run has the given ID.
var ErrRunNotFound = errors.New("run not found")

// SQLiteStore implements RunStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const runsSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	strategy        TEXT NOT NULL,
	mode            TEXT NOT NULL,
	symbol          TEXT NOT NULL DEFAULT '',
	start_date      TEXT NOT NULL,
	end_date        TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	days            INTEGER NOT NULL,
	initial_capital REAL NOT NULL,
	final_equity    REAL NOT NULL,
	total_return    REAL NOT NULL,
	ann_return      REAL NOT NULL,
	ann_vol         REAL NOT NULL,
	sharpe          REAL NOT NULL,
	max_drawdown    REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_strategy ON runs (strategy, created_at DESC);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, runs the
// schema migration, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(runsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating runs schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts a new run record. A zero CreatedAt is stamped with the
// current time.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *RunRecord) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, strategy, mode, symbol, start_date, end_date, created_at,
			days, initial_capital, final_equity, total_return,
			ann_return, ann_vol, sharpe, max_drawdown
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Strategy, run.Mode, run.Symbol,
		formatDate(run.StartDate), formatDate(run.EndDate),
		run.CreatedAt.Format(time.RFC3339),
		run.Days, run.InitialCapital, run.FinalEquity, run.TotalReturn,
		run.AnnReturn, run.AnnVol, run.Sharpe, run.MaxDrawdown,
	)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a single run by its ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, strategy, mode, symbol, start_date, end_date, created_at,
		       days, initial_capital, final_equity, total_return,
		       ann_return, ann_vol, sharpe, max_drawdown
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first, up to limit. An empty
// strategy matches every strategy.
func (s *SQLiteStore) ListRuns(ctx context.Context, strategy string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, strategy, mode, symbol, start_date, end_date, created_at,
		       days, initial_capital, final_equity, total_return,
		       ann_return, ann_vol, sharpe, max_drawdown
		FROM runs`
	args := []any{}
	if strategy != "" {
		query += ` WHERE strategy = ?`
		args = append(args, strategy)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*RunRecord, error) {
	var run RunRecord
	var start, end, created string
	err := sc.Scan(
		&run.ID, &run.Strategy, &run.Mode, &run.Symbol, &start, &end, &created,
		&run.Days, &run.InitialCapital, &run.FinalEquity, &run.TotalReturn,
		&run.AnnReturn, &run.AnnVol, &run.Sharpe, &run.MaxDrawdown,
	)
	if err != nil {
		return nil, err
	}

	if run.StartDate, err = parseStoredDate(start); err != nil {
		return nil, err
	}
	if run.EndDate, err = parseStoredDate(end); err != nil {
		return nil, err
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	return &run, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(util.DateLayout)
}

func parseStoredDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return util.ParseDate(s)
}
