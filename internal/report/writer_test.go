package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpwquant/internal/backtest"
)

func sampleResult() *backtest.Result {
	d0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d1 := d0.AddDate(0, 0, 1)

	return &backtest.Result{
		Mode:   backtest.ModeSingle,
		Symbol: "pzu",
		EquityCurve: []backtest.EquityPoint{
			{Date: d0, Equity: 100_000, CumRet: 0},
			{Date: d1, Equity: 101_000, CumRet: 0.01},
		},
		Daily: []backtest.DailyState{
			{Date: d0, Symbol: "pzu", Weight: 1, Turnover: 1},
			{Date: d1, Symbol: "pzu", Ret1D: 0.01, Weight: 1, AppliedWeight: 1,
				GrossRet: 0.01, NetRet: 0.01, GrossLeverage: 1,
				BenchmarkRet: 0.002, ActiveRet: 0.008, HasBenchmark: true},
		},
		Summary: backtest.Summary{
			Days:           2,
			InitialCapital: 100_000,
			FinalEquity:    101_000,
			TotalReturn:    0.01,
		},
	}
}

func TestWriteResultArtifacts(t *testing.T) {
	w := NewWriter(t.TempDir())

	dir, err := w.WriteResult("run-abc", sampleResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(w.ResultsDir, "run-abc"), dir)

	for _, name := range []string{"equity.csv", "daily.csv", "equity.parquet", "daily.parquet"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	// CSV contents.
	f, err := os.Open(filepath.Join(dir, "equity.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"date", "equity", "cum_return"}, rows[0])
	assert.Equal(t, "2024-01-02", rows[1][0])
	assert.Equal(t, "101000", rows[2][1])

	// Parquet round-trip.
	equity, err := parquet.ReadFile[EquityRow](filepath.Join(dir, "equity.parquet"))
	require.NoError(t, err)
	require.Len(t, equity, 2)
	assert.InDelta(t, 0.01, equity[1].CumReturn, 1e-12)

	daily, err := parquet.ReadFile[DailyRow](filepath.Join(dir, "daily.parquet"))
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.True(t, daily[1].HasBenchmark)
	assert.InDelta(t, 0.008, daily[1].ActiveRet, 1e-12)
}

func TestWriteResultBenchmarkColumnsBlankWithoutMatch(t *testing.T) {
	w := NewWriter(t.TempDir())

	dir, err := w.WriteResult("run-abc", sampleResult())
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "daily.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Day 0 has no benchmark match: empty cells, not zeros.
	assert.Equal(t, "", rows[1][12])
	assert.Equal(t, "", rows[1][13])
	assert.NotEqual(t, "", rows[2][12])
}

func TestWriteResultEmpty(t *testing.T) {
	w := NewWriter(t.TempDir())

	res := &backtest.Result{Mode: backtest.ModePortfolio}
	dir, err := w.WriteResult("empty-run", res)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "equity.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")

	equity, err := parquet.ReadFile[EquityRow](filepath.Join(dir, "equity.parquet"))
	require.NoError(t, err)
	assert.Empty(t, equity)
}

func TestPrintSummary(t *testing.T) {
	res := sampleResult()
	res.Benchmark = &backtest.BenchmarkStats{
		Days: 1, Beta: 0.9, Corr: 0.8, InformationRatio: 1.1,
	}

	var buf bytes.Buffer
	PrintSummary(&buf, "run-abc", res)

	out := buf.String()
	assert.Contains(t, out, "run-abc")
	assert.Contains(t, out, "single (pzu)")
	assert.Contains(t, out, "Max drawdown")
	assert.Contains(t, out, "Information ratio")
}

func TestPrintSummaryNoBenchmark(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, "run-abc", sampleResult())

	assert.NotContains(t, buf.String(), "Information ratio")
}
