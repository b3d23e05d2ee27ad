package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnualizedStatsConstantReturn(t *testing.T) {
	returns := make([]float64, 252)
	for i := range returns {
		returns[i] = 0.001
	}

	annRet, annVol, sharpe := annualizedStats(returns, 252)

	// Exactly one trading year of constant +10 bps days.
	assert.InDelta(t, math.Pow(1.001, 252)-1, annRet, 1e-12)
	assert.Zero(t, annVol)
	// Zero volatility defines the ratio as 0, not +Inf.
	assert.Zero(t, sharpe)
}

func TestAnnualizedStatsHalfYear(t *testing.T) {
	// 126 days of +0.1% annualizes to the same CAGR as a full year of them.
	returns := make([]float64, 126)
	for i := range returns {
		returns[i] = 0.001
	}

	annRet, _, _ := annualizedStats(returns, 252)
	assert.InDelta(t, math.Pow(1.001, 252)-1, annRet, 1e-9)
}

func TestAnnualizedStatsEmpty(t *testing.T) {
	annRet, annVol, sharpe := annualizedStats(nil, 252)
	assert.Zero(t, annRet)
	assert.Zero(t, annVol)
	assert.Zero(t, sharpe)
}

func TestAnnualizedStatsVolatility(t *testing.T) {
	// Alternating +-1% has zero mean and population std of exactly 1%.
	returns := make([]float64, 100)
	for i := range returns {
		if i%2 == 0 {
			returns[i] = 0.01
		} else {
			returns[i] = -0.01
		}
	}

	_, annVol, _ := annualizedStats(returns, 252)
	assert.InDelta(t, 0.01*math.Sqrt(252), annVol, 1e-12)
}

func TestMaxDrawdown(t *testing.T) {
	cases := []struct {
		name   string
		equity []float64
		want   float64
	}{
		{"two dips", []float64{100, 110, 99, 105, 120, 90}, 90.0/120.0 - 1},
		{"monotone", []float64{100, 100, 101, 105}, 0},
		{"single drop", []float64{100, 50}, -0.5},
		{"empty", nil, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := maxDrawdown(c.equity)
			assert.InDelta(t, c.want, got, 1e-12)
			assert.LessOrEqual(t, got, 0.0)
		})
	}
}

func TestSummaryAverages(t *testing.T) {
	signals := []int{0, 1, 1, 0}
	rets := []float64{0.0, 0.0, 0.0, 0.0}

	panel, err := NewPanel(makeObs("pzu", signals, rets))
	require.NoError(t, err)

	engine, err := NewEngine(zeroCostConfig(), nil)
	require.NoError(t, err)

	res, err := engine.RunSingle(panel, "pzu")
	require.NoError(t, err)

	// Turnover: 0, 1 (enter), 0, 1 (exit) -> avg 0.5.
	// Applied leverage: 0, 0, 1, 1 -> avg 0.5.
	assert.InDelta(t, 0.5, res.Summary.AvgTurnover, 1e-12)
	assert.InDelta(t, 0.5, res.Summary.AvgGrossLeverage, 1e-12)
	assert.Equal(t, 4, res.Summary.Days)
}

func TestSummaryFirstDayLossCountsAsDrawdown(t *testing.T) {
	// The drawdown curve is seeded at initial capital, so losing money on the
	// very first simulated day is already a drawdown.
	signals := []int{1, 1}
	rets := []float64{0.0, -0.05}

	panel, err := NewPanel(makeObs("pzu", signals, rets))
	require.NoError(t, err)

	engine, err := NewEngine(zeroCostConfig(), nil)
	require.NoError(t, err)

	res, err := engine.RunSingle(panel, "pzu")
	require.NoError(t, err)

	assert.InDelta(t, -0.05, res.Summary.MaxDrawdown, 1e-12)
}
