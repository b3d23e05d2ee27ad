package builtins

import (
	"github.com/markcheno/go-talib"

	"gpwquant/internal/domain"
	"gpwquant/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*RSI)(nil)

// RSI is a mean-reversion strategy on Wilder's relative strength index: it
// buys oversold readings and (unless long-only) shorts overbought ones. The
// position is held until the index crosses back through the exit level, so
// consecutive bars keep the signal even when the index leaves the entry zone.
type RSI struct {
	name       string
	Period     int
	LowerBound float64
	UpperBound float64
	LongOnly   bool
	ExitLong   float64
	ExitShort  float64
}

// NewRSI creates an RSI strategy registered under the given name, with 50/50
// exit levels.
func NewRSI(name string, period int, lower, upper float64, longOnly bool) *RSI {
	return &RSI{
		name:       name,
		Period:     period,
		LowerBound: lower,
		UpperBound: upper,
		LongOnly:   longOnly,
		ExitLong:   50.0,
		ExitShort:  50.0,
	}
}

// Name returns the preset name this instance was registered under.
func (r *RSI) Name() string {
	return r.name
}

// Signals runs the stateful entry/exit machine over the RSI series. Warmup
// bars stay flat.
func (r *RSI) Signals(bars []domain.Bar) ([]domain.SignalRecord, error) {
	if len(bars) == 0 {
		return nil, nil
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	var rsi []float64
	if len(bars) > r.Period {
		rsi = talib.Rsi(closes, r.Period)
	}

	records := make([]domain.SignalRecord, 0, len(bars))
	current := domain.SignalFlat
	for i, b := range bars {
		rec := domain.SignalRecord{
			Strategy: r.name,
			Symbol:   b.Symbol,
			Date:     b.Date,
			Close:    b.Close,
			Signal:   domain.SignalFlat,
		}

		if rsi != nil && i >= r.Period {
			val := rsi[i]
			rec.Score = val

			switch {
			case val < r.LowerBound:
				current = domain.SignalLong
			case val > r.UpperBound:
				if r.LongOnly {
					current = domain.SignalFlat
				} else {
					current = domain.SignalShort
				}
			default:
				if current == domain.SignalLong && val > r.ExitLong {
					current = domain.SignalFlat
				}
				if current == domain.SignalShort && val < r.ExitShort {
					current = domain.SignalFlat
				}
			}
			rec.Signal = current
		}

		records = append(records, rec)
	}
	return records, nil
}
