// Package backtest simulates trading strategies against historical daily
// returns and produces equity curves, per-date diagnostics, and summary
// statistics. The engine is a pure function of (signal panel, config,
// optional benchmark): it holds no mutable state between runs, so separate
// runs are safe to execute concurrently.
//
// The central correctness rule is the lag-one causality shift: a signal
// observed on day T is applied as a weight on day T+1, so the return realized
// on any date uses only information knowable strictly before that date's
// close.
package backtest

import (
	"log/slog"
	"math"
)

// Engine runs backtest simulations under a fixed Config.
type Engine struct {
	cfg Config
	log *slog.Logger
}

// NewEngine validates cfg and returns an Engine. Configuration errors are
// surfaced here, before any simulation step runs.
func NewEngine(cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{cfg: cfg, log: logger}, nil
}

// Config returns the engine's immutable configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// clampWeight maps a directional signal to a target weight in [-1, +1].
func clampWeight(signal int) float64 {
	return math.Max(-1, math.Min(1, float64(signal)))
}

// lagWeights shifts a weight series forward by one day: the weight applied on
// date T is the weight decided on date T-1, and the first date carries no
// position. Both simulators route every weight series through this shift.
func lagWeights(w []float64) []float64 {
	applied := make([]float64, len(w))
	for i := 1; i < len(w); i++ {
		applied[i] = w[i-1]
	}
	return applied
}

// costReturn is the return drag charged for a date's cumulative turnover.
// A flat-to-flat day has zero turnover and therefore zero cost.
func (e *Engine) costReturn(turnover float64) float64 {
	return turnover * e.cfg.costRate()
}

// RunSingle simulates one instrument's signal series in isolation. The
// degenerate leverage case applies: maximum exposure is 1 regardless of the
// portfolio leverage budget.
func (e *Engine) RunSingle(panel *Panel, symbol string) (*Result, error) {
	obs := panel.Series(symbol)
	if len(obs) == 0 {
		return nil, &AlignmentError{Symbol: symbol, Reason: "no overlapping signal and return dates"}
	}

	weights := make([]float64, len(obs))
	for i, o := range obs {
		weights[i] = clampWeight(o.Signal)
	}
	applied := lagWeights(weights)

	daily := make([]DailyState, len(obs))
	curve := make([]EquityPoint, len(obs))
	equity := e.cfg.InitialCapital

	for i, o := range obs {
		gross := o.Ret1D * applied[i]
		turnover := math.Abs(weights[i] - applied[i])
		cost := e.costReturn(turnover)
		net := gross - cost
		equity *= 1.0 + net

		nLong, nShort := 0, 0
		if weights[i] > 0 {
			nLong = 1
		} else if weights[i] < 0 {
			nShort = 1
		}

		daily[i] = DailyState{
			Date:          o.Date,
			Symbol:        o.Symbol,
			Ret1D:         o.Ret1D,
			Weight:        weights[i],
			AppliedWeight: applied[i],
			GrossRet:      gross,
			CostRet:       cost,
			NetRet:        net,
			Turnover:      turnover,
			GrossLeverage: math.Abs(applied[i]),
			NumLong:       nLong,
			NumShort:      nShort,
		}
		curve[i] = EquityPoint{
			Date:   o.Date,
			Equity: equity,
			CumRet: equity/e.cfg.InitialCapital - 1.0,
		}
	}

	res := &Result{
		Mode:        ModeSingle,
		Symbol:      obs[0].Symbol,
		Config:      e.cfg,
		EquityCurve: curve,
		Daily:       daily,
	}
	res.Summary = e.summarize(res)

	e.log.Debug("single-instrument simulation complete",
		"symbol", res.Symbol, "days", len(daily), "final_equity", equity)

	return res, nil
}

// RunPortfolio simulates all instruments in the panel as one cross-sectional
// book. Each date the gross leverage budget is split across the long and
// short sides per the allocation policy and distributed equally within each
// side; instruments with no record on a date are flat for that date. Costs
// are charged once per date on the aggregate turnover.
func (e *Engine) RunPortfolio(panel *Panel) (*Result, error) {
	dates := panel.Dates()
	if len(dates) == 0 {
		return nil, &AlignmentError{Reason: "empty signal panel: no dates to simulate"}
	}

	symbols := panel.Symbols()

	// Per-symbol date → observation lookup.
	byDate := make(map[string]map[int64]Observation, len(symbols))
	for _, sym := range symbols {
		m := make(map[int64]Observation)
		for _, o := range panel.Series(sym) {
			m[o.Date.Unix()] = o
		}
		byDate[sym] = m
	}

	prevTarget := make(map[string]float64, len(symbols))

	daily := make([]DailyState, len(dates))
	curve := make([]EquityPoint, len(dates))
	equity := e.cfg.InitialCapital

	for i, date := range dates {
		key := date.Unix()

		nLong, nShort := 0, 0
		for _, sym := range symbols {
			if o, ok := byDate[sym][key]; ok {
				switch {
				case o.Signal > 0:
					nLong++
				case o.Signal < 0:
					nShort++
				}
			}
		}

		longBudget, shortBudget := e.cfg.sideBudgets(nLong, nShort)

		var gross, turnover, grossLev float64
		for _, sym := range symbols {
			var target float64
			o, ok := byDate[sym][key]
			if ok {
				switch {
				case o.Signal > 0:
					target = longBudget / float64(nLong)
				case o.Signal < 0:
					target = -shortBudget / float64(nShort)
				}
			}
			// Lag-one application: today's return accrues on yesterday's
			// target, and today's weight change is what we pay for today.
			appliedWeight := prevTarget[sym]
			if ok {
				gross += o.Ret1D * appliedWeight
			}
			turnover += math.Abs(target - appliedWeight)
			grossLev += math.Abs(appliedWeight)

			prevTarget[sym] = target
		}

		cost := e.costReturn(turnover)
		net := gross - cost
		equity *= 1.0 + net

		daily[i] = DailyState{
			Date:          date,
			GrossRet:      gross,
			CostRet:       cost,
			NetRet:        net,
			Turnover:      turnover,
			GrossLeverage: grossLev,
			NumLong:       nLong,
			NumShort:      nShort,
		}
		curve[i] = EquityPoint{
			Date:   date,
			Equity: equity,
			CumRet: equity/e.cfg.InitialCapital - 1.0,
		}
	}

	res := &Result{
		Mode:        ModePortfolio,
		Config:      e.cfg,
		EquityCurve: curve,
		Daily:       daily,
	}
	res.Summary = e.summarize(res)

	e.log.Debug("cross-sectional simulation complete",
		"symbols", len(symbols), "days", len(daily), "final_equity", equity)

	return res, nil
}
