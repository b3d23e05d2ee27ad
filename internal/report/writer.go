// Package report renders backtest results: per-run CSV and Parquet artifacts
// on disk plus a console summary table.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/parquet-go/parquet-go"

	"gpwquant/internal/backtest"
	"gpwquant/internal/util"
)

// Writer persists backtest results under <ResultsDir>/<runID>/.
type Writer struct {
	ResultsDir string
}

// NewWriter creates a Writer rooted at the given results directory.
func NewWriter(resultsDir string) *Writer {
	return &Writer{ResultsDir: resultsDir}
}

// ---------------------------------------------------------------------------
// Parquet record types (on-disk schema)
// ---------------------------------------------------------------------------

// EquityRow is the Parquet schema for the equity curve.
type EquityRow struct {
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Equity    float64 `parquet:"equity"`
	CumReturn float64 `parquet:"cum_return"`
}

// DailyRow is the Parquet schema for the per-day simulation record.
type DailyRow struct {
	Timestamp     int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Symbol        string  `parquet:"symbol"`
	Ret1D         float64 `parquet:"ret_1d"`
	Weight        float64 `parquet:"weight"`
	AppliedWeight float64 `parquet:"applied_weight"`
	GrossRet      float64 `parquet:"gross_ret"`
	CostRet       float64 `parquet:"cost_ret"`
	NetRet        float64 `parquet:"net_ret"`
	Turnover      float64 `parquet:"turnover"`
	GrossLeverage float64 `parquet:"gross_leverage"`
	NumLong       int32   `parquet:"num_long"`
	NumShort      int32   `parquet:"num_short"`
	BenchmarkRet  float64 `parquet:"benchmark_ret"`
	ActiveRet     float64 `parquet:"active_ret"`
	HasBenchmark  bool    `parquet:"has_benchmark"`
}

// ---------------------------------------------------------------------------
// Artifact writing
// ---------------------------------------------------------------------------

// WriteResult writes equity and daily artifacts in both CSV and Parquet to
// <ResultsDir>/<runID>/ and returns the run directory. A zero-length result
// still produces the four files with headers and no rows.
func (w *Writer) WriteResult(runID string, res *backtest.Result) (string, error) {
	dir := filepath.Join(w.ResultsDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	if err := w.writeEquityCSV(filepath.Join(dir, "equity.csv"), res); err != nil {
		return "", fmt.Errorf("writing equity.csv: %w", err)
	}
	if err := w.writeDailyCSV(filepath.Join(dir, "daily.csv"), res); err != nil {
		return "", fmt.Errorf("writing daily.csv: %w", err)
	}

	equityRows := make([]EquityRow, 0, len(res.EquityCurve))
	for _, p := range res.EquityCurve {
		equityRows = append(equityRows, EquityRow{
			Timestamp: p.Date.UnixMilli(),
			Equity:    p.Equity,
			CumReturn: p.CumRet,
		})
	}
	if err := parquet.WriteFile(filepath.Join(dir, "equity.parquet"), equityRows); err != nil {
		return "", fmt.Errorf("writing equity.parquet: %w", err)
	}

	dailyRows := make([]DailyRow, 0, len(res.Daily))
	for _, d := range res.Daily {
		dailyRows = append(dailyRows, DailyRow{
			Timestamp:     d.Date.UnixMilli(),
			Symbol:        d.Symbol,
			Ret1D:         d.Ret1D,
			Weight:        d.Weight,
			AppliedWeight: d.AppliedWeight,
			GrossRet:      d.GrossRet,
			CostRet:       d.CostRet,
			NetRet:        d.NetRet,
			Turnover:      d.Turnover,
			GrossLeverage: d.GrossLeverage,
			NumLong:       int32(d.NumLong),
			NumShort:      int32(d.NumShort),
			BenchmarkRet:  d.BenchmarkRet,
			ActiveRet:     d.ActiveRet,
			HasBenchmark:  d.HasBenchmark,
		})
	}
	if err := parquet.WriteFile(filepath.Join(dir, "daily.parquet"), dailyRows); err != nil {
		return "", fmt.Errorf("writing daily.parquet: %w", err)
	}

	return dir, nil
}

func (w *Writer) writeEquityCSV(path string, res *backtest.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"date", "equity", "cum_return"}); err != nil {
		return err
	}
	for _, p := range res.EquityCurve {
		row := []string{
			p.Date.Format(util.DateLayout),
			formatFloat(p.Equity),
			formatFloat(p.CumRet),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *Writer) writeDailyCSV(path string, res *backtest.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{
		"date", "symbol", "ret_1d", "weight", "applied_weight",
		"gross_ret", "cost_ret", "net_ret", "turnover", "gross_leverage",
		"num_long", "num_short", "benchmark_ret", "active_ret",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, d := range res.Daily {
		bmRet, activeRet := "", ""
		if d.HasBenchmark {
			bmRet = formatFloat(d.BenchmarkRet)
			activeRet = formatFloat(d.ActiveRet)
		}
		row := []string{
			d.Date.Format(util.DateLayout),
			d.Symbol,
			formatFloat(d.Ret1D),
			formatFloat(d.Weight),
			formatFloat(d.AppliedWeight),
			formatFloat(d.GrossRet),
			formatFloat(d.CostRet),
			formatFloat(d.NetRet),
			formatFloat(d.Turnover),
			formatFloat(d.GrossLeverage),
			strconv.Itoa(d.NumLong),
			strconv.Itoa(d.NumShort),
			bmRet,
			activeRet,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ---------------------------------------------------------------------------
// Console summary
// ---------------------------------------------------------------------------

// PrintSummary renders the run's headline metrics as a console table.
func PrintSummary(out io.Writer, runID string, res *backtest.Result) {
	s := res.Summary

	window := "-"
	if len(res.EquityCurve) > 0 {
		window = fmt.Sprintf("%s to %s",
			res.EquityCurve[0].Date.Format(util.DateLayout),
			res.EquityCurve[len(res.EquityCurve)-1].Date.Format(util.DateLayout))
	}

	scope := string(res.Mode)
	if res.Symbol != "" {
		scope = fmt.Sprintf("%s (%s)", res.Mode, res.Symbol)
	}
	fmt.Fprintf(out, "\nrun %s  %s  %s  %d days\n\n", runID, scope, window, s.Days)

	table := tablewriter.NewWriter(out)
	table.Header("Metric", "Value")
	table.Append("Initial capital", fmt.Sprintf("%.2f", s.InitialCapital))
	table.Append("Final equity", fmt.Sprintf("%.2f", s.FinalEquity))
	table.Append("Total return", fmt.Sprintf("%.2f%%", s.TotalReturn*100))
	table.Append("Ann. return", fmt.Sprintf("%.2f%%", s.AnnReturn*100))
	table.Append("Ann. volatility", fmt.Sprintf("%.2f%%", s.AnnVol*100))
	table.Append("Sharpe", fmt.Sprintf("%.2f", s.Sharpe))
	table.Append("Max drawdown", fmt.Sprintf("%.2f%%", s.MaxDrawdown*100))
	table.Append("Avg turnover", fmt.Sprintf("%.4f", s.AvgTurnover))
	table.Append("Avg gross leverage", fmt.Sprintf("%.4f", s.AvgGrossLeverage))
	table.Render()

	if res.Benchmark != nil {
		b := res.Benchmark
		fmt.Fprintf(out, "\nbenchmark (%d overlapping days)\n\n", b.Days)

		table := tablewriter.NewWriter(out)
		table.Header("Metric", "Value")
		table.Append("Active ann. return", fmt.Sprintf("%.2f%%", b.ActiveAnnReturn*100))
		table.Append("Active ann. vol", fmt.Sprintf("%.2f%%", b.ActiveAnnVol*100))
		table.Append("Information ratio", fmt.Sprintf("%.2f", b.InformationRatio))
		table.Append("Beta", fmt.Sprintf("%.2f", b.Beta))
		table.Append("Correlation", fmt.Sprintf("%.2f", b.Corr))
		table.Render()
	}
	fmt.Fprintln(out)
}
