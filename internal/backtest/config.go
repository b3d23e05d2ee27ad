package backtest

import "fmt"

// AllocationPolicy selects how the cross-sectional simulator splits the gross
// leverage budget between the long and short sides of the book.
type AllocationPolicy string

const (
	// AllocationSplitEven gives each populated side half the budget, and the
	// full budget to a lone side.
	AllocationSplitEven AllocationPolicy = "split-even"
	// AllocationProportional splits the budget in proportion to the number of
	// signals on each side.
	AllocationProportional AllocationPolicy = "proportional"
)

// ParseAllocationPolicy converts a config/CLI string into an
// AllocationPolicy.
func ParseAllocationPolicy(s string) (AllocationPolicy, error) {
	switch AllocationPolicy(s) {
	case AllocationSplitEven, AllocationProportional:
		return AllocationPolicy(s), nil
	case "":
		return AllocationSplitEven, nil
	default:
		return "", fmt.Errorf("backtest: unknown allocation policy %q", s)
	}
}

// Config holds the parameters of one backtest run. It is constructed once per
// run and never mutated mid-simulation.
type Config struct {
	InitialCapital     float64
	CommissionBps      float64
	SlippageBps        float64
	MaxGrossLeverage   float64
	TradingDaysPerYear int
	Allocation         AllocationPolicy
}

// DefaultConfig returns the house defaults: 100k capital, 5 bps commission,
// 2 bps slippage, gross leverage capped at 1.0, 252 trading days per year.
func DefaultConfig() Config {
	return Config{
		InitialCapital:     100_000,
		CommissionBps:      5,
		SlippageBps:        2,
		MaxGrossLeverage:   1.0,
		TradingDaysPerYear: 252,
		Allocation:         AllocationSplitEven,
	}
}

// Validate checks the configuration invariants. It returns a *ConfigError
// describing the first violated field.
func (c Config) Validate() error {
	if c.InitialCapital <= 0 {
		return &ConfigError{Field: "initial_capital", Reason: fmt.Sprintf("must be > 0, got %g", c.InitialCapital)}
	}
	if c.CommissionBps < 0 {
		return &ConfigError{Field: "commission_bps", Reason: fmt.Sprintf("must be >= 0, got %g", c.CommissionBps)}
	}
	if c.SlippageBps < 0 {
		return &ConfigError{Field: "slippage_bps", Reason: fmt.Sprintf("must be >= 0, got %g", c.SlippageBps)}
	}
	if c.MaxGrossLeverage <= 0 {
		return &ConfigError{Field: "max_gross_leverage", Reason: fmt.Sprintf("must be > 0, got %g", c.MaxGrossLeverage)}
	}
	if c.TradingDaysPerYear <= 0 {
		return &ConfigError{Field: "trading_days_per_year", Reason: fmt.Sprintf("must be > 0, got %d", c.TradingDaysPerYear)}
	}
	if _, err := ParseAllocationPolicy(string(c.Allocation)); err != nil {
		return &ConfigError{Field: "allocation", Reason: fmt.Sprintf("unknown policy %q", c.Allocation)}
	}
	return nil
}

// costRate is the return drag per unit of turnover: (commission + slippage)
// expressed as a fraction. Costs are charged symmetrically on any weight
// change, in either direction.
func (c Config) costRate() float64 {
	return (c.CommissionBps + c.SlippageBps) / 10_000.0
}

// sideBudgets allocates gross exposure between longs and shorts for one date
// under the configured policy. Sides with no signals always receive zero.
func (c Config) sideBudgets(nLong, nShort int) (longBudget, shortBudget float64) {
	if nLong == 0 && nShort == 0 {
		return 0, 0
	}

	switch c.Allocation {
	case AllocationProportional:
		total := float64(nLong + nShort)
		return c.MaxGrossLeverage * float64(nLong) / total,
			c.MaxGrossLeverage * float64(nShort) / total
	default: // AllocationSplitEven
		if nLong > 0 && nShort > 0 {
			return 0.5 * c.MaxGrossLeverage, 0.5 * c.MaxGrossLeverage
		}
		if nLong > 0 {
			return c.MaxGrossLeverage, 0
		}
		return 0, c.MaxGrossLeverage
	}
}
