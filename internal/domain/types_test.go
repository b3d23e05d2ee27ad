package domain

import (
	"testing"
	"time"
)

func TestSignalRecordValid(t *testing.T) {
	cases := []struct {
		signal int
		want   bool
	}{
		{SignalLong, true},
		{SignalFlat, true},
		{SignalShort, true},
		{2, false},
		{-2, false},
	}

	for _, c := range cases {
		rec := SignalRecord{
			Strategy: "momentum",
			Symbol:   "pzu",
			Date:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Signal:   c.signal,
		}
		if got := rec.Valid(); got != c.want {
			t.Errorf("Valid() for signal %d = %v, want %v", c.signal, got, c.want)
		}
	}
}

func TestMarketConstants(t *testing.T) {
	if MarketGPW != "gpw" || MarketUS != "us" {
		t.Error("Market constants have unexpected values")
	}
	if SignalLong != 1 || SignalFlat != 0 || SignalShort != -1 {
		t.Error("Signal direction constants have unexpected values")
	}
}
