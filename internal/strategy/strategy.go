// Package strategy defines the Strategy interface for signal generators and
// provides a Registry for managing multiple strategy implementations.
package strategy

import (
	"context"
	"sort"

	"gpwquant/internal/domain"
)

// Strategy turns one symbol's bar history into a signal series. Signals
// describes what the strategy wants to hold at each close; the simulator
// applies its own causality shift, so implementations may use the current
// bar's close.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// Signals generates one signal record per bar for a single symbol's
	// date-ordered bar series. Warmup bars get a flat signal.
	Signals(bars []domain.Bar) ([]domain.SignalRecord, error)
}

// GenerateSignals groups bars by symbol, sorts each series by date, and runs
// the strategy over every symbol. Records come back ordered by date, then
// symbol.
func GenerateSignals(ctx context.Context, s Strategy, bars []domain.Bar) ([]domain.SignalRecord, error) {
	bySymbol := make(map[string][]domain.Bar)
	for _, b := range bars {
		bySymbol[b.Symbol] = append(bySymbol[b.Symbol], b)
	}

	symbols := make([]string, 0, len(bySymbol))
	for sym := range bySymbol {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var records []domain.SignalRecord
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		series := bySymbol[sym]
		sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

		recs, err := s.Signals(series)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].Symbol < records[j].Symbol
	})
	return records, nil
}

// Registry holds a named collection of strategies for lookup and enumeration.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy Registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// Register adds a strategy to the registry, keyed by its Name().
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get retrieves a strategy by name. The second return value indicates whether
// the strategy was found.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// List returns a sorted slice of all registered strategy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
