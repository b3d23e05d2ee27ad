package backtest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gpwquant/internal/util"
)

// Observation is one row of the input panel: a symbol's close, daily return,
// and directional signal for a single date.
type Observation struct {
	Symbol string
	Date   time.Time
	Close  float64
	Ret1D  float64
	Signal int
}

// Panel is the validated, date-sorted input to the simulators. Symbols are
// lower-cased, observations are unique per (symbol, date), and the joined
// date index is the sorted union of all per-symbol dates.
type Panel struct {
	bySymbol map[string][]Observation
	symbols  []string
	dates    []time.Time
}

// NewPanel builds a Panel from raw observations. Dates are normalized to
// midnight UTC and symbols to lower case. Duplicate (symbol, date) rows
// violate the input uniqueness invariant and are rejected.
func NewPanel(obs []Observation) (*Panel, error) {
	bySymbol := make(map[string][]Observation)
	for _, o := range obs {
		o.Symbol = strings.ToLower(o.Symbol)
		o.Date = util.NormalizeDate(o.Date)
		bySymbol[o.Symbol] = append(bySymbol[o.Symbol], o)
	}

	dateSet := make(map[time.Time]struct{})
	symbols := make([]string, 0, len(bySymbol))
	for sym, rows := range bySymbol {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
		for i := 1; i < len(rows); i++ {
			if rows[i].Date.Equal(rows[i-1].Date) {
				return nil, fmt.Errorf("backtest: duplicate observation for %s on %s",
					sym, rows[i].Date.Format("2006-01-02"))
			}
		}
		bySymbol[sym] = rows
		for _, r := range rows {
			dateSet[r.Date] = struct{}{}
		}
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return &Panel{bySymbol: bySymbol, symbols: symbols, dates: dates}, nil
}

// ComputeReturns fills Ret1D from consecutive closes for observations that
// came from a price-only table. The first observation of each symbol has no
// prior close and is dropped; gaps in the date sequence simply chain the
// closes that do exist (a missing day is a missing observation, never a
// forward fill). A row without a positive close carries no usable price and
// is an input error, not a zero return.
func ComputeReturns(obs []Observation) ([]Observation, error) {
	grouped := make(map[string][]Observation)
	for _, o := range obs {
		key := strings.ToLower(o.Symbol)
		grouped[key] = append(grouped[key], o)
	}

	var out []Observation
	for sym, rows := range grouped {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
		for i, o := range rows {
			if o.Close <= 0 {
				return nil, fmt.Errorf("backtest: no close price for %s on %s, cannot derive returns",
					sym, o.Date.Format("2006-01-02"))
			}
			if i == 0 {
				continue
			}
			o.Ret1D = o.Close/rows[i-1].Close - 1.0
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out, nil
}

// Symbols returns the sorted list of symbols in the panel.
func (p *Panel) Symbols() []string {
	return append([]string(nil), p.symbols...)
}

// Dates returns the sorted union of all observation dates.
func (p *Panel) Dates() []time.Time {
	return append([]time.Time(nil), p.dates...)
}

// Series returns the date-sorted observations for one symbol (nil when the
// symbol is absent).
func (p *Panel) Series(symbol string) []Observation {
	return p.bySymbol[strings.ToLower(symbol)]
}

// HasSymbol reports whether the panel contains any observation for symbol.
func (p *Panel) HasSymbol(symbol string) bool {
	return len(p.bySymbol[strings.ToLower(symbol)]) > 0
}

// Empty reports whether the panel holds no observations at all.
func (p *Panel) Empty() bool {
	return len(p.dates) == 0
}

// Filter returns a new Panel restricted to [start, end] inclusive. A zero
// start or end leaves that bound open.
func (p *Panel) Filter(start, end time.Time) *Panel {
	var filtered []Observation
	for _, sym := range p.symbols {
		for _, o := range p.bySymbol[sym] {
			if !start.IsZero() && o.Date.Before(start) {
				continue
			}
			if !end.IsZero() && o.Date.After(end) {
				continue
			}
			filtered = append(filtered, o)
		}
	}
	// Rows were unique before filtering, so rebuilding cannot fail.
	out, _ := NewPanel(filtered)
	return out
}
