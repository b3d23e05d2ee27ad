package us

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpwquant/internal/domain"
	"gpwquant/internal/gather"
	"gpwquant/internal/store"
)

// fakeBarClient returns canned multi-bar responses.
type fakeBarClient struct {
	bars map[string][]marketdata.Bar
	err  error

	gotSymbols []string
	gotReq     marketdata.GetBarsRequest
}

func (f *fakeBarClient) GetMultiBars(symbols []string, req marketdata.GetBarsRequest) (map[string][]marketdata.Bar, error) {
	f.gotSymbols = symbols
	f.gotReq = req
	return f.bars, f.err
}

func newTestGatherer(s store.BarStore, client barClient, symbols []string, window gather.DateRange) *DailyBarGatherer {
	return &DailyBarGatherer{
		client:  client,
		store:   s,
		symbols: symbols,
		window:  window,
		log:     slog.New(slog.DiscardHandler),
	}
}

func TestDailyBarGathererRun(t *testing.T) {
	day := time.Date(2024, 1, 2, 5, 0, 0, 0, time.UTC) // Alpaca stamps 05:00 UTC
	client := &fakeBarClient{
		bars: map[string][]marketdata.Bar{
			"spy": {
				{Timestamp: day, Open: 470, High: 475, Low: 469, Close: 474, Volume: 80_000_000},
				{Timestamp: day.AddDate(0, 0, 1), Open: 474, High: 476, Low: 472, Close: 475, Volume: 70_000_000},
			},
		},
	}

	s := store.NewParquetStore(t.TempDir())
	window := gather.DateRange{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := newTestGatherer(s, client, []string{"SPY"}, window)

	require.NoError(t, g.Run(context.Background()))

	assert.Equal(t, []string{"SPY"}, client.gotSymbols)
	assert.Equal(t, marketdata.OneDay, client.gotReq.TimeFrame)
	assert.False(t, client.gotReq.End.IsZero(), "zero window end defaults to a concrete date")

	bars, err := s.ReadBars(context.Background(), domain.MarketUS, "SPY",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, "SPY", bars[0].Symbol)
	assert.True(t, bars[0].Date.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		"bar dates are truncated to midnight")
}

func TestDailyBarGathererClientError(t *testing.T) {
	client := &fakeBarClient{err: errors.New("boom")}
	g := newTestGatherer(store.NewParquetStore(t.TempDir()), client, []string{"SPY"}, gather.DateRange{})

	err := g.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GetMultiBars")
}

func TestDailyBarGathererNoSymbols(t *testing.T) {
	g := newTestGatherer(store.NewParquetStore(t.TempDir()), &fakeBarClient{}, nil, gather.DateRange{})
	require.Error(t, g.Run(context.Background()))
}

func TestDailyBarGathererEmptyResponse(t *testing.T) {
	client := &fakeBarClient{bars: map[string][]marketdata.Bar{}}
	g := newTestGatherer(store.NewParquetStore(t.TempDir()), client, []string{"SPY"}, gather.DateRange{})
	require.Error(t, g.Run(context.Background()))
}
