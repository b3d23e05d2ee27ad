package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gpwquant/internal/domain"
	"gpwquant/internal/util"
)

// ReadSignalsTable loads a signal table from a standalone CSV or Parquet
// file. The format is picked by extension. CSV files need a header row with
// at least symbol, date, close, and signal columns; strategy and score are
// optional. The close is what the simulator derives daily returns from, so a
// table without prices is rejected here rather than simulated as flat.
func ReadSignalsTable(path string) ([]domain.SignalRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		rows, err := readParquetFile[SignalRow](path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		records := make([]domain.SignalRecord, 0, len(rows))
		for _, r := range rows {
			records = append(records, domain.SignalRecord{
				Strategy: r.Strategy,
				Symbol:   r.Symbol,
				Date:     time.UnixMilli(r.Timestamp).UTC(),
				Close:    r.Close,
				Signal:   int(r.Signal),
				Score:    r.Score,
			})
		}
		return records, nil
	case ".csv":
		return readSignalsCSV(path)
	default:
		return nil, fmt.Errorf("unsupported signal table format %q (want .csv or .parquet)", filepath.Ext(path))
	}
}

func readSignalsCSV(path string) ([]domain.SignalRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", path, err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"symbol", "date", "signal", "close"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, required)
		}
	}

	var records []domain.SignalRecord
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line+1, err)
		}
		line++

		date, err := util.ParseDate(row[col["date"]])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		signal, err := strconv.Atoi(strings.TrimSpace(row[col["signal"]]))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad signal: %w", path, line, err)
		}

		rec := domain.SignalRecord{
			Symbol: strings.TrimSpace(row[col["symbol"]]),
			Date:   date,
			Signal: signal,
		}
		if i, ok := col["strategy"]; ok {
			rec.Strategy = strings.TrimSpace(row[i])
		}
		closeStr := strings.TrimSpace(row[col["close"]])
		if closeStr == "" {
			return nil, fmt.Errorf("%s line %d: missing close", path, line)
		}
		if rec.Close, err = strconv.ParseFloat(closeStr, 64); err != nil {
			return nil, fmt.Errorf("%s line %d: bad close: %w", path, line, err)
		}
		if i, ok := col["score"]; ok && row[i] != "" {
			if rec.Score, err = strconv.ParseFloat(row[i], 64); err != nil {
				return nil, fmt.Errorf("%s line %d: bad score: %w", path, line, err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadBenchmarkTable loads a benchmark close series from a standalone CSV or
// Parquet file. CSV files need a header row with date and close columns.
// Only the date and close fields of the returned bars are populated for CSV
// input.
func ReadBenchmarkTable(path string) ([]domain.Bar, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		rows, err := readParquetFile[BarRecord](path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		bars := make([]domain.Bar, 0, len(rows))
		for _, r := range rows {
			bars = append(bars, domain.Bar{
				Symbol: r.Symbol,
				Date:   time.UnixMilli(r.Timestamp).UTC(),
				Open:   r.Open,
				High:   r.High,
				Low:    r.Low,
				Close:  r.Close,
				Volume: r.Volume,
			})
		}
		return bars, nil
	case ".csv":
		return readBenchmarkCSV(path)
	default:
		return nil, fmt.Errorf("unsupported benchmark format %q (want .csv or .parquet)", filepath.Ext(path))
	}
}

func readBenchmarkCSV(path string) ([]domain.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", path, err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "close"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, required)
		}
	}

	var bars []domain.Bar
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line+1, err)
		}
		line++

		date, err := util.ParseDate(row[col["date"]])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		close, err := strconv.ParseFloat(strings.TrimSpace(row[col["close"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad close: %w", path, line, err)
		}

		bar := domain.Bar{Date: date, Close: close}
		if i, ok := col["symbol"]; ok {
			bar.Symbol = strings.TrimSpace(row[i])
		}
		bars = append(bars, bar)
	}
	return bars, nil
}
