package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"gpwquant/internal/domain"
	"gpwquant/internal/util"
)

// Compile-time interface checks.
var _ BarStore = (*ParquetStore)(nil)
var _ SignalStore = (*ParquetStore)(nil)

// ParquetStore implements BarStore and SignalStore using Parquet files on disk.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// BarRecord is the Parquet schema for daily bar data.
type BarRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
}

// SignalRow is the Parquet schema for strategy signal tables.
type SignalRow struct {
	Strategy  string  `parquet:"strategy"`
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Close     float64 `parquet:"close"`
	Signal    int32   `parquet:"signal"`
	Score     float64 `parquet:"score"`
}

// ---------------------------------------------------------------------------
// BarStore implementation
// ---------------------------------------------------------------------------

// WriteBars writes bar data to Parquet files organized by symbol and year.
// Each symbol+year combination produces a separate file at:
//
//	<DataDir>/<market>/daily/<SYMBOL>/<YYYY>.parquet
func (s *ParquetStore) WriteBars(_ context.Context, market domain.Market, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	type key struct {
		symbol string
		year   int
	}
	groups := make(map[key][]BarRecord)
	for _, b := range bars {
		k := key{symbol: b.Symbol, year: b.Date.Year()}
		groups[k] = append(groups[k], BarRecord{
			Symbol:    b.Symbol,
			Timestamp: b.Date.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}

	for k, records := range groups {
		path := s.barPath(market, k.symbol, k.year)

		// Read existing records to merge.
		existing, _ := readParquetFile[BarRecord](path)
		merged := mergeBarRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing bars for %s/%d: %w", k.symbol, k.year, err)
		}
	}
	return nil
}

// ReadBars reads bar data from Parquet files for the given symbol and time range.
func (s *ParquetStore) ReadBars(_ context.Context, market domain.Market, symbol string, start, end time.Time) ([]domain.Bar, error) {
	var bars []domain.Bar
	for year := start.Year(); year <= end.Year(); year++ {
		path := s.barPath(market, symbol, year)

		records, err := readParquetFile[BarRecord](path)
		if err != nil {
			// File doesn't exist for this year — skip.
			continue
		}

		for _, r := range records {
			ts := time.UnixMilli(r.Timestamp).UTC()
			if inRange(ts, start, end) {
				bars = append(bars, domain.Bar{
					Symbol: r.Symbol,
					Date:   ts,
					Open:   r.Open,
					High:   r.High,
					Low:    r.Low,
					Close:  r.Close,
					Volume: r.Volume,
				})
			}
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// ListSymbols lists all symbols that have bar data in the given market.
func (s *ParquetStore) ListSymbols(_ context.Context, market domain.Market) ([]string, error) {
	dir := filepath.Join(s.DataDir, string(market), "daily")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// ---------------------------------------------------------------------------
// SignalStore implementation
// ---------------------------------------------------------------------------

// WriteSignals writes signal records to Parquet files organized by strategy
// and year:
//
//	<DataDir>/signals/<strategy>/<YYYY>.parquet
func (s *ParquetStore) WriteSignals(_ context.Context, records []domain.SignalRecord) error {
	if len(records) == 0 {
		return nil
	}

	type key struct {
		strategy string
		year     int
	}
	groups := make(map[key][]SignalRow)
	for _, r := range records {
		k := key{strategy: r.Strategy, year: r.Date.Year()}
		groups[k] = append(groups[k], SignalRow{
			Strategy:  r.Strategy,
			Symbol:    r.Symbol,
			Timestamp: r.Date.UnixMilli(),
			Close:     r.Close,
			Signal:    int32(r.Signal),
			Score:     r.Score,
		})
	}

	for k, rows := range groups {
		path := s.signalPath(k.strategy, k.year)

		existing, _ := readParquetFile[SignalRow](path)
		merged := mergeSignalRows(existing, rows)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing signals for %s/%d: %w", k.strategy, k.year, err)
		}
	}
	return nil
}

// ReadSignals reads all signal records for a strategy within [start, end].
func (s *ParquetStore) ReadSignals(_ context.Context, strategy string, start, end time.Time) ([]domain.SignalRecord, error) {
	dir := filepath.Join(s.DataDir, "signals", strategy)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []domain.SignalRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".parquet") {
			continue
		}
		rows, err := readParquetFile[SignalRow](filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		for _, r := range rows {
			ts := time.UnixMilli(r.Timestamp).UTC()
			if inRange(ts, start, end) {
				records = append(records, domain.SignalRecord{
					Strategy: r.Strategy,
					Symbol:   r.Symbol,
					Date:     ts,
					Close:    r.Close,
					Signal:   int(r.Signal),
					Score:    r.Score,
				})
			}
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].Symbol < records[j].Symbol
	})
	return records, nil
}

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

// barPath returns the filesystem path for a bar Parquet file.
// Layout: <dataDir>/<market>/daily/<SYMBOL>/<YYYY>.parquet
func (s *ParquetStore) barPath(market domain.Market, symbol string, year int) string {
	return filepath.Join(s.DataDir, string(market), "daily",
		strings.ToUpper(symbol), fmt.Sprintf("%d.parquet", year))
}

// signalPath returns the filesystem path for a signal table Parquet file.
// Layout: <dataDir>/signals/<strategy>/<YYYY>.parquet
func (s *ParquetStore) signalPath(strategy string, year int) string {
	return filepath.Join(s.DataDir, "signals", strategy, fmt.Sprintf("%d.parquet", year))
}

// inRange reports whether ts falls within [start, end]. A zero bound leaves
// that side open.
func inRange(ts, start, end time.Time) bool {
	if !start.IsZero() && ts.Before(util.NormalizeDate(start)) {
		return false
	}
	if !end.IsZero() && ts.After(util.NormalizeDate(end)) {
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeBarRecords deduplicates bar records by (symbol, timestamp), preferring
// new records over existing ones.
func mergeBarRecords(existing, incoming []BarRecord) []BarRecord {
	type key struct {
		symbol string
		ts     int64
	}
	seen := make(map[key]BarRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Timestamp}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Timestamp}] = r
	}

	merged := make([]BarRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}

// mergeSignalRows deduplicates signal rows by (symbol, timestamp), preferring
// new rows over existing ones. Results are sorted by timestamp then symbol.
func mergeSignalRows(existing, incoming []SignalRow) []SignalRow {
	type key struct {
		symbol string
		ts     int64
	}
	seen := make(map[key]SignalRow, len(existing)+len(incoming))
	for _, r := range existing {
		seen[key{r.Symbol, r.Timestamp}] = r
	}
	for _, r := range incoming {
		seen[key{r.Symbol, r.Timestamp}] = r
	}

	merged := make([]SignalRow, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Timestamp != merged[j].Timestamp {
			return merged[i].Timestamp < merged[j].Timestamp
		}
		return merged[i].Symbol < merged[j].Symbol
	})
	return merged
}
