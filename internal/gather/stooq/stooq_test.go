package stooq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpwquant/internal/domain"
	"gpwquant/internal/gather"
	"gpwquant/internal/store"
)

const pzuCSV = `Data,Otwarcie,Najwyzszy,Najnizszy,Zamkniecie,Wolumen
2024-01-02,45.00,46.10,44.80,45.80,1200000
2024-01-03,45.80,47.00,45.50,46.90,950000
`

func TestParseDailyCSV(t *testing.T) {
	bars, err := ParseDailyCSV("PZU", strings.NewReader(pzuCSV))
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "pzu", bars[0].Symbol)
	assert.True(t, bars[0].Date.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	assert.InDelta(t, 45.80, bars[0].Close, 1e-12)
	assert.EqualValues(t, 1_200_000, bars[0].Volume)
}

func TestParseDailyCSVNoVolumeColumn(t *testing.T) {
	// Index series come without a volume column.
	csv := "Data,Otwarcie,Najwyzszy,Najnizszy,Zamkniecie\n2024-01-02,2340.0,2360.0,2330.0,2350.1\n"
	bars, err := ParseDailyCSV("wig20", strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Zero(t, bars[0].Volume)
	assert.InDelta(t, 2350.1, bars[0].Close, 1e-12)
}

func TestParseDailyCSVBadPrice(t *testing.T) {
	csv := "Data,Otwarcie,Najwyzszy,Najnizszy,Zamkniecie,Wolumen\n2024-01-02,abc,46,44,45,100\n"
	_, err := ParseDailyCSV("pzu", strings.NewReader(csv))
	require.Error(t, err)
}

func TestParseDailyCSVEmpty(t *testing.T) {
	bars, err := ParseDailyCSV("pzu", strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestDailyBarGathererRun(t *testing.T) {
	var gotQueries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQueries = append(gotQueries, r.URL.RawQuery)
		if r.URL.Query().Get("s") == "bad" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Write([]byte(pzuCSV))
	}))
	defer srv.Close()

	s := store.NewParquetStore(t.TempDir())
	g := NewDailyBarGatherer(s, []string{"PZU", "bad", "kgh"}, gather.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}, 6000)
	g.baseURL = srv.URL + "/"
	g.retryDelay = time.Millisecond

	require.NoError(t, g.Run(context.Background()))

	// The bad symbol retried three times; the two good ones fetched once.
	assert.Len(t, gotQueries, 5)
	assert.Contains(t, gotQueries[0], "d1=20240101")
	assert.Contains(t, gotQueries[0], "d2=20240131")
	assert.Contains(t, gotQueries[0], "i=d")

	bars, err := s.ReadBars(context.Background(), domain.MarketGPW, "pzu",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, bars, 2)

	symbols, err := s.ListSymbols(context.Background(), domain.MarketGPW)
	require.NoError(t, err)
	assert.Equal(t, []string{"KGH", "PZU"}, symbols)
}

func TestDailyBarGathererAllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewDailyBarGatherer(store.NewParquetStore(t.TempDir()), []string{"pzu"}, gather.DateRange{}, 6000)
	g.baseURL = srv.URL + "/"
	g.retryDelay = time.Millisecond

	require.Error(t, g.Run(context.Background()))
}
