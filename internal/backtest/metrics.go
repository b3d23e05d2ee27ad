package backtest

import "math"

// Summary holds the standardized scalar statistics for one run, comparable
// across strategies and against a benchmark.
type Summary struct {
	Days           int
	InitialCapital float64
	FinalEquity    float64
	TotalReturn    float64

	AnnReturn   float64
	AnnVol      float64
	Sharpe      float64
	MaxDrawdown float64

	AvgTurnover      float64
	AvgGrossLeverage float64
}

// annualizedStats computes CAGR-style annualized return, annualized
// volatility, and the Sharpe-like ratio of a daily return series. No
// risk-free rate is subtracted; the ratio is 0 when volatility is 0.
func annualizedStats(returns []float64, tradingDays int) (annRet, annVol, sharpe float64) {
	n := len(returns)
	if n == 0 {
		return 0, 0, 0
	}

	growth := 1.0
	for _, r := range returns {
		growth *= 1.0 + r
	}

	years := float64(n) / float64(tradingDays)
	if growth > 0 {
		annRet = math.Pow(growth, 1.0/years) - 1.0
	} else {
		// Capital wiped out (or worse): geometric annualization is undefined.
		annRet = -1.0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(n)

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(n)

	annVol = math.Sqrt(variance) * math.Sqrt(float64(tradingDays))
	if annVol > 0 {
		sharpe = annRet / annVol
	}
	return annRet, annVol, sharpe
}

// maxDrawdown is the minimum over time of equity/runningMax(equity) - 1.
// It is always <= 0, and equals 0 only for a monotonically non-decreasing
// equity curve.
func maxDrawdown(equity []float64) float64 {
	var peak float64
	maxDD := 0.0
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		dd := v/peak - 1.0
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// summarize derives the Summary block from a finished simulation. A filtered
// run reaches this with only the filtered window in Daily, so both the
// compounding and the volatility sample are restricted to that window.
func (e *Engine) summarize(res *Result) Summary {
	s := Summary{
		Days:           len(res.Daily),
		InitialCapital: e.cfg.InitialCapital,
		FinalEquity:    e.cfg.InitialCapital,
	}
	if len(res.Daily) == 0 {
		return s
	}

	returns := res.NetReturns()
	s.AnnReturn, s.AnnVol, s.Sharpe = annualizedStats(returns, e.cfg.TradingDaysPerYear)

	equities := make([]float64, len(res.EquityCurve))
	for i, p := range res.EquityCurve {
		equities[i] = p.Equity
	}
	// Seed the drawdown curve at initial capital so a first-day loss counts.
	s.MaxDrawdown = maxDrawdown(append([]float64{e.cfg.InitialCapital}, equities...))

	last := res.EquityCurve[len(res.EquityCurve)-1]
	s.FinalEquity = last.Equity
	s.TotalReturn = last.CumRet

	var turnover, leverage float64
	for _, d := range res.Daily {
		turnover += d.Turnover
		leverage += d.GrossLeverage
	}
	s.AvgTurnover = turnover / float64(len(res.Daily))
	s.AvgGrossLeverage = leverage / float64(len(res.Daily))

	return s
}
