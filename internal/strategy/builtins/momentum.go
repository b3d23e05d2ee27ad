// Package builtins provides the built-in signal generators that ship with
// gpwquant, plus the preset catalog that names their tuned variants.
package builtins

import (
	"github.com/markcheno/go-talib"

	"gpwquant/internal/domain"
	"gpwquant/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*Momentum)(nil)

// Momentum is a time-series momentum / trend-following strategy: long when
// the trailing return exceeds EntryLong, short when it falls below
// EntryShort, flat otherwise.
type Momentum struct {
	name       string
	Lookback   int
	EntryLong  float64
	EntryShort float64
	LongOnly   bool
	ShortOnly  bool
}

// NewMomentum creates a momentum strategy registered under the given name.
func NewMomentum(name string, lookback int, entryLong, entryShort float64, longOnly, shortOnly bool) *Momentum {
	return &Momentum{
		name:       name,
		Lookback:   lookback,
		EntryLong:  entryLong,
		EntryShort: entryShort,
		LongOnly:   longOnly,
		ShortOnly:  shortOnly,
	}
}

// Name returns the preset name this instance was registered under.
func (m *Momentum) Name() string {
	return m.name
}

// Signals computes trailing momentum (close / close[t-lookback] - 1) and maps
// it through the entry thresholds. The first Lookback bars are flat.
func (m *Momentum) Signals(bars []domain.Bar) ([]domain.SignalRecord, error) {
	if len(bars) == 0 {
		return nil, nil
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	// Roc is the same trailing return in percent.
	var roc []float64
	if len(bars) > m.Lookback {
		roc = talib.Roc(closes, m.Lookback)
	}

	records := make([]domain.SignalRecord, 0, len(bars))
	for i, b := range bars {
		rec := domain.SignalRecord{
			Strategy: m.name,
			Symbol:   b.Symbol,
			Date:     b.Date,
			Close:    b.Close,
			Signal:   domain.SignalFlat,
		}

		if i >= m.Lookback {
			momentum := roc[i] / 100
			rec.Score = momentum
			if !m.ShortOnly && momentum > m.EntryLong {
				rec.Signal = domain.SignalLong
			}
			if !m.LongOnly && momentum < m.EntryShort {
				rec.Signal = domain.SignalShort
			}
		}

		records = append(records, rec)
	}
	return records, nil
}
