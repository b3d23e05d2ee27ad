package backtest

import "time"

// Mode selects between the single-instrument and cross-sectional simulators.
type Mode string

const (
	ModeSingle    Mode = "single"
	ModePortfolio Mode = "portfolio"
)

// EquityPoint is one point of the equity curve: cumulative capital after the
// date's net return, and the cumulative return relative to initial capital.
type EquityPoint struct {
	Date   time.Time
	Equity float64
	CumRet float64
}

// DailyState is the per-date diagnostic record produced by both simulators.
// Each day's state depends only on the previous day's weights, never on
// future data. Symbol, Ret1D, Weight, and AppliedWeight are populated in
// single mode; NumLong/NumShort describe the cross-sectional book in
// portfolio mode. Benchmark fields are filled only for dates matched by a
// benchmark comparison.
type DailyState struct {
	Date   time.Time
	Symbol string

	Ret1D         float64
	Weight        float64
	AppliedWeight float64

	GrossRet      float64
	CostRet       float64
	NetRet        float64
	Turnover      float64
	GrossLeverage float64
	NumLong       int
	NumShort      int

	BenchmarkRet float64
	ActiveRet    float64
	HasBenchmark bool
}

// Result is the full output of one backtest run. Recomputing the equity
// curve from Daily is idempotent: the same inputs always produce the same
// Result.
type Result struct {
	Mode   Mode
	Symbol string // set in single mode
	Config Config

	EquityCurve []EquityPoint
	Daily       []DailyState
	Summary     Summary

	// Benchmark is nil when no benchmark was supplied or when fewer than two
	// dates overlapped.
	Benchmark *BenchmarkStats
}

// NetReturns extracts the daily net-return series in date order.
func (r *Result) NetReturns() []float64 {
	out := make([]float64, len(r.Daily))
	for i, d := range r.Daily {
		out[i] = d.NetRet
	}
	return out
}
