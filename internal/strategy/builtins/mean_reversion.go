package builtins

import (
	"github.com/markcheno/go-talib"

	"gpwquant/internal/domain"
	"gpwquant/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*MeanReversion)(nil)

// MeanReversion buys when the close sits far below its rolling mean and
// shorts when it sits far above, measured in rolling standard deviations.
type MeanReversion struct {
	name      string
	Window    int
	ZEntry    float64
	LongOnly  bool
	ShortOnly bool
}

// NewMeanReversion creates a mean-reversion strategy registered under the
// given name.
func NewMeanReversion(name string, window int, zEntry float64, longOnly, shortOnly bool) *MeanReversion {
	return &MeanReversion{
		name:      name,
		Window:    window,
		ZEntry:    zEntry,
		LongOnly:  longOnly,
		ShortOnly: shortOnly,
	}
}

// Name returns the preset name this instance was registered under.
func (m *MeanReversion) Name() string {
	return m.name
}

// Signals computes the rolling z-score of the close and enters against the
// deviation: z below -ZEntry goes long, z above +ZEntry goes short. Bars
// before the window fills, and bars with zero dispersion, stay flat.
func (m *MeanReversion) Signals(bars []domain.Bar) ([]domain.SignalRecord, error) {
	if len(bars) == 0 {
		return nil, nil
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	var ma, sd []float64
	if len(bars) >= m.Window {
		ma = talib.Sma(closes, m.Window)
		sd = talib.StdDev(closes, m.Window, 1.0) // population std
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

		if i >= m.Window-1 && sd[i] > 0 {
			z := (b.Close - ma[i]) / sd[i]
			rec.Score = z
			if !m.ShortOnly && z < -m.ZEntry {
				rec.Signal = domain.SignalLong
			}
			if !m.LongOnly && z > m.ZEntry {
				rec.Signal = domain.SignalShort
			}
		}

		records = append(records, rec)
	}
	return records, nil
}
