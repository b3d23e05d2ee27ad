package backtest

import (
	"math"
	"sort"
	"time"

	"gpwquant/internal/util"
)

// PricePoint is one (date, close) row of an external benchmark series.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// ReturnPoint is one (date, return) row of a daily return series.
type ReturnPoint struct {
	Date time.Time
	Ret  float64
}

// ReturnsFromCloses converts a close series into daily simple returns. The
// input is sorted by date first; the first close has no prior and produces no
// return.
func ReturnsFromCloses(points []PricePoint) []ReturnPoint {
	sorted := append([]PricePoint(nil), points...)
	for i := range sorted {
		sorted[i].Date = util.NormalizeDate(sorted[i].Date)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var out []ReturnPoint
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Close == 0 {
			continue
		}
		out = append(out, ReturnPoint{
			Date: sorted[i].Date,
			Ret:  sorted[i].Close/sorted[i-1].Close - 1.0,
		})
	}
	return out
}

// BenchmarkStats summarizes the strategy's daily returns against an aligned
// benchmark return series.
type BenchmarkStats struct {
	Days int

	ActiveAnnReturn  float64
	ActiveAnnVol     float64
	InformationRatio float64

	Beta float64
	Corr float64
}

// CompareBenchmark aligns the benchmark returns to the result's net-return
// series by date intersection, computes active-return statistics, and
// annotates the matched Daily rows in place with benchmark and active
// returns. Dates absent from the benchmark are dropped from the comparison
// only; the base equity curve is untouched.
//
// Returns ErrBenchmarkUnavailable when fewer than two dates overlap.
func (e *Engine) CompareBenchmark(res *Result, bm []ReturnPoint) (*BenchmarkStats, error) {
	bmByDate := make(map[int64]float64, len(bm))
	for _, p := range bm {
		bmByDate[util.NormalizeDate(p.Date).Unix()] = p.Ret
	}

	var matched []int
	var strat, bench []float64
	for i := range res.Daily {
		r, ok := bmByDate[res.Daily[i].Date.Unix()]
		if !ok {
			continue
		}
		matched = append(matched, i)
		strat = append(strat, res.Daily[i].NetRet)
		bench = append(bench, r)
	}

	// A failed comparison must leave the result untouched, so the overlap
	// check comes before any row annotation.
	if len(matched) < 2 {
		return nil, ErrBenchmarkUnavailable
	}

	active := make([]float64, len(matched))
	for j, i := range matched {
		res.Daily[i].BenchmarkRet = bench[j]
		res.Daily[i].ActiveRet = strat[j] - bench[j]
		res.Daily[i].HasBenchmark = true
		active[j] = res.Daily[i].ActiveRet
	}

	stats := &BenchmarkStats{Days: len(active)}
	stats.ActiveAnnReturn, stats.ActiveAnnVol, stats.InformationRatio =
		annualizedStats(active, e.cfg.TradingDaysPerYear)
	stats.Beta, stats.Corr = betaCorr(strat, bench)

	res.Benchmark = stats

	e.log.Debug("benchmark comparison complete",
		"overlap_days", stats.Days, "beta", stats.Beta, "corr", stats.Corr)

	return stats, nil
}

// betaCorr computes OLS beta (cov(strategy, benchmark) / var(benchmark)) and
// the Pearson correlation of two equal-length return series. Degenerate
// zero-variance inputs yield zeros.
func betaCorr(strat, bench []float64) (beta, corr float64) {
	n := float64(len(strat))
	if n == 0 {
		return 0, 0
	}

	var meanS, meanB float64
	for i := range strat {
		meanS += strat[i]
		meanB += bench[i]
	}
	meanS /= n
	meanB /= n

	var cov, varS, varB float64
	for i := range strat {
		ds := strat[i] - meanS
		db := bench[i] - meanB
		cov += ds * db
		varS += ds * ds
		varB += db * db
	}
	cov /= n
	varS /= n
	varB /= n

	if varB > 0 {
		beta = cov / varB
	}
	if varS > 0 && varB > 0 {
		corr = cov / math.Sqrt(varS*varB)
	}
	return beta, corr
}
