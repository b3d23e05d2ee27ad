// Package us gathers daily OHLCV bars for US symbols via the Alpaca
// market-data API. gpwquant uses these as benchmark series (SPY and friends)
// next to the GPW universe.
package us

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"gpwquant/internal/domain"
	"gpwquant/internal/gather"
	"gpwquant/internal/store"
)

// Compile-time interface check.
var _ gather.Gatherer = (*DailyBarGatherer)(nil)

// barClient is the slice of the Alpaca market-data client the gatherer uses.
type barClient interface {
	GetMultiBars(symbols []string, req marketdata.GetBarsRequest) (map[string][]marketdata.Bar, error)
}

// DailyBarGatherer gathers daily bar data for an explicit list of US symbols
// via the Alpaca market-data API and writes them to the bar store.
type DailyBarGatherer struct {
	client  barClient
	store   store.BarStore
	symbols []string
	window  gather.DateRange
	log     *slog.Logger
}

// NewDailyBarGatherer creates a DailyBarGatherer configured with the given
// Alpaca credentials, target store, and symbol list. A zero window end means
// "through yesterday" so partially formed bars never land in the store.
func NewDailyBarGatherer(apiKey, apiSecret, dataURL string, s store.BarStore, symbols []string, window gather.DateRange) *DailyBarGatherer {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}

	return &DailyBarGatherer{
		client:  marketdata.NewClient(opts),
		store:   s,
		symbols: symbols,
		window:  window,
		log:     slog.Default().With("gatherer", "us-daily"),
	}
}

// Name returns the gatherer identifier.
func (g *DailyBarGatherer) Name() string { return "us-daily" }

// Run fetches daily bars for the configured symbols in one multi-bar request
// and writes them to the store.
func (g *DailyBarGatherer) Run(ctx context.Context) error {
	if len(g.symbols) == 0 {
		return fmt.Errorf("no symbols configured")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	end := g.window.End
	if end.IsZero() {
		end = time.Now().AddDate(0, 0, -1)
	}

	multiBars, err := g.client.GetMultiBars(g.symbols, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     g.window.Start,
		End:       end,
		Feed:      "iex",
	})
	if err != nil {
		return fmt.Errorf("GetMultiBars: %w", err)
	}

	var bars []domain.Bar
	for symbol, alpacaBars := range multiBars {
		for _, ab := range alpacaBars {
			bars = append(bars, domain.Bar{
				Symbol: strings.ToUpper(symbol),
				Date:   ab.Timestamp.UTC().Truncate(24 * time.Hour),
				Open:   ab.Open,
				High:   ab.High,
				Low:    ab.Low,
				Close:  ab.Close,
				Volume: int64(ab.Volume),
			})
		}
	}

	if len(bars) == 0 {
		return fmt.Errorf("no bars returned for %v", g.symbols)
	}
	if err := g.store.WriteBars(ctx, domain.MarketUS, bars); err != nil {
		return fmt.Errorf("writing bars: %w", err)
	}

	g.log.Info("complete", "symbols", len(multiBars), "bars", len(bars))
	return nil
}
