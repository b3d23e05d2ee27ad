// Package stooq gathers daily OHLCV bars for GPW symbols from the public
// Stooq CSV endpoint.
package stooq

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gpwquant/internal/domain"
	"gpwquant/internal/gather"
	"gpwquant/internal/store"
	"gpwquant/internal/util"
)

// Compile-time interface check.
var _ gather.Gatherer = (*DailyBarGatherer)(nil)

// DefaultBaseURL is the Stooq historical quotes endpoint.
const DefaultBaseURL = "https://stooq.pl/q/d/l/"

const userAgent = "gpwquant/1.0"

// DailyBarGatherer fetches daily bars for an explicit list of GPW symbols
// from Stooq and writes them to the bar store. Stooq throttles aggressive
// clients, so requests go through a per-minute rate limiter with retries.
type DailyBarGatherer struct {
	client     *http.Client
	store      store.BarStore
	baseURL    string
	symbols    []string
	window     gather.DateRange
	limiter    *util.RateLimiter
	retryDelay time.Duration
	log        *slog.Logger
}

// NewDailyBarGatherer creates a gatherer for the given symbols and window.
// A zero window end means "through today". ratePerMin caps outbound requests.
func NewDailyBarGatherer(s store.BarStore, symbols []string, window gather.DateRange, ratePerMin int) *DailyBarGatherer {
	return &DailyBarGatherer{
		client:     &http.Client{Timeout: 20 * time.Second},
		store:      s,
		baseURL:    DefaultBaseURL,
		symbols:    symbols,
		window:     window,
		limiter:    util.NewRateLimiter(ratePerMin),
		retryDelay: 2 * time.Second,
		log:        slog.Default().With("gatherer", "gpw-daily"),
	}
}

// Name returns the gatherer identifier.
func (g *DailyBarGatherer) Name() string { return "gpw-daily" }

// Run fetches each configured symbol in turn and writes its bars to the
// store. A symbol that fails after retries is logged and skipped; Run only
// errors when every symbol failed or the context was cancelled.
func (g *DailyBarGatherer) Run(ctx context.Context) error {
	end := g.window.End
	if end.IsZero() {
		end = time.Now()
	}

	var ok, failed int
	for _, symbol := range g.symbols {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}

		var bars []domain.Bar
		err := util.Retry(ctx, 3, g.retryDelay, func() error {
			var err error
			bars, err = g.fetchDaily(ctx, symbol, g.window.Start, end)
			return err
		})
		if err != nil {
			g.log.Error("fetch failed", "symbol", symbol, "err", err)
			failed++
			continue
		}

		if err := g.store.WriteBars(ctx, domain.MarketGPW, bars); err != nil {
			return fmt.Errorf("writing bars for %s: %w", symbol, err)
		}

		g.log.Info("symbol done", "symbol", symbol, "bars", len(bars))
		ok++
	}

	g.log.Info("complete", "ok", ok, "failed", failed)
	if ok == 0 && failed > 0 {
		return fmt.Errorf("all %d symbols failed", failed)
	}
	return nil
}

// fetchDaily downloads and parses one symbol's daily CSV.
func (g *DailyBarGatherer) fetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.buildURL(symbol, start, end), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stooq returned %s for %s", resp.Status, symbol)
	}

	bars, err := ParseDailyCSV(symbol, resp.Body)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("empty CSV for %s", symbol)
	}
	return bars, nil
}

// buildURL assembles the Stooq query: s=<symbol>&i=d plus optional
// d1/d2 bounds in YYYYMMDD.
func (g *DailyBarGatherer) buildURL(symbol string, start, end time.Time) string {
	q := url.Values{}
	q.Set("s", strings.ToLower(symbol))
	q.Set("i", "d")
	if !start.IsZero() {
		q.Set("d1", start.Format("20060102"))
	}
	if !end.IsZero() {
		q.Set("d2", end.Format("20060102"))
	}
	return g.baseURL + "?" + q.Encode()
}

// ParseDailyCSV parses Stooq's daily quote CSV. Columns are positional
// (date, open, high, low, close, volume); the header row and its language
// are ignored, and a missing volume column is tolerated.
func ParseDailyCSV(symbol string, r io.Reader) ([]domain.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	// Header row.
	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var bars []domain.Bar
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		if len(row) < 5 {
			return nil, fmt.Errorf("line %d: want at least 5 columns, got %d", line, len(row))
		}

		date, err := util.ParseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var ohlc [4]float64
		for i := 0; i < 4; i++ {
			if ohlc[i], err = strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64); err != nil {
				return nil, fmt.Errorf("line %d: bad price: %w", line, err)
			}
		}

		var volume int64
		if len(row) >= 6 && strings.TrimSpace(row[5]) != "" {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad volume: %w", line, err)
			}
			volume = int64(v)
		}

		bars = append(bars, domain.Bar{
			Symbol: strings.ToLower(symbol),
			Date:   date,
			Open:   ohlc[0],
			High:   ohlc[1],
			Low:    ohlc[2],
			Close:  ohlc[3],
			Volume: volume,
		})
	}
	return bars, nil
}
