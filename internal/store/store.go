// Package store defines storage interfaces for persisting and retrieving
// domain objects such as bars, signals, and backtest run records.
package store

import (
	"context"
	"time"

	"gpwquant/internal/domain"
)

// BarStore persists and retrieves OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars under the given market.
	WriteBars(ctx context.Context, market domain.Market, bars []domain.Bar) error

	// ReadBars returns bars for the given symbol and market within [start, end].
	ReadBars(ctx context.Context, market domain.Market, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols available in the given market.
	ListSymbols(ctx context.Context, market domain.Market) ([]string, error)
}

// SignalStore persists and retrieves strategy signal tables.
type SignalStore interface {
	// WriteSignals persists a batch of signal records.
	WriteSignals(ctx context.Context, records []domain.SignalRecord) error

	// ReadSignals returns all records for a strategy within [start, end].
	ReadSignals(ctx context.Context, strategy string, start, end time.Time) ([]domain.SignalRecord, error)
}

// RunRecord is one completed backtest run with its headline numbers.
type RunRecord struct {
	ID             string
	Strategy       string
	Mode           string
	Symbol         string // empty for portfolio runs
	StartDate      time.Time
	EndDate        time.Time
	CreatedAt      time.Time
	Days           int
	InitialCapital float64
	FinalEquity    float64
	TotalReturn    float64
	AnnReturn      float64
	AnnVol         float64
	Sharpe         float64
	MaxDrawdown    float64
}

// RunStore records completed backtest runs for later lookup.
type RunStore interface {
	// SaveRun inserts a new run record.
	SaveRun(ctx context.Context, run *RunRecord) error

	// GetRun retrieves a single run by its ID.
	GetRun(ctx context.Context, id string) (*RunRecord, error)

	// ListRuns returns the most recent runs, newest first, up to limit.
	// An empty strategy matches every strategy.
	ListRuns(ctx context.Context, strategy string, limit int) ([]RunRecord, error)
}
