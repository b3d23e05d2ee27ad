// Package domain defines the core value types shared across the gpwquant
// system: daily OHLCV bars and directional strategy signals.
package domain

import "time"

// Market identifies the exchange a symbol trades on.
type Market string

const (
	// MarketGPW is the Warsaw Stock Exchange (data sourced from Stooq).
	MarketGPW Market = "gpw"
	// MarketUS is the US equity market (data sourced from Alpaca), used for
	// benchmark series such as SPY.
	MarketUS Market = "us"
)

// Signal direction values. A signal is a directional instruction for one
// symbol on one date: long, flat, or short.
const (
	SignalLong  = 1
	SignalFlat  = 0
	SignalShort = -1
)

// Bar is a single daily OHLCV bar for one symbol.
type Bar struct {
	Symbol string
	Date   time.Time // normalized to midnight UTC
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// SignalRecord is one strategy signal for a (symbol, date) pair. Strategies
// may attach the feature value that produced the signal (momentum, z-score,
// RSI level) in Score for diagnostics; the backtest engine ignores it.
type SignalRecord struct {
	Strategy string
	Symbol   string
	Date     time.Time
	Close    float64
	Signal   int // SignalLong, SignalFlat, or SignalShort
	Score    float64
}

// Valid reports whether the signal direction is one of the three allowed
// values.
func (s SignalRecord) Valid() bool {
	return s.Signal == SignalLong || s.Signal == SignalFlat || s.Signal == SignalShort
}
