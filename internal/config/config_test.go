package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	yamlContent := []byte(`
storage:
  data_dir: "/tmp/gpwquant/data"
  sqlite_path: "/tmp/gpwquant/gpwquant.db"
  results_dir: "/tmp/gpwquant/backtests"
logging:
  level: "debug"
  format: "json"
backtest:
  initial_capital: 250000
  commission_bps: 10
  slippage_bps: 5
  max_gross_leverage: 2.0
  trading_days_per_year: 252
  allocation: "proportional"
gather:
  stooq:
    symbols: ["pko", "pzu", "kgh"]
    start_date: "2010-01-01"
    rate_limit_per_min: 20
  us:
    symbols: ["SPY"]
    start_date: "2010-01-01"
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
`)

	path := filepath.Join(t.TempDir(), "gpwquant.yaml")
	if err := os.WriteFile(path, yamlContent, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	// Clear any environment overrides that might interfere.
	os.Unsetenv("ALPACA_API_KEY")
	os.Unsetenv("ALPACA_API_SECRET")
	os.Unsetenv("APCA_API_KEY_ID")
	os.Unsetenv("APCA_API_SECRET_KEY")
	os.Unsetenv("GPWQUANT_DATA_DIR")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Storage.DataDir != "/tmp/gpwquant/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/gpwquant/data")
	}
	if cfg.Storage.ResultsDir != "/tmp/gpwquant/backtests" {
		t.Errorf("Storage.ResultsDir = %q, want %q", cfg.Storage.ResultsDir, "/tmp/gpwquant/backtests")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
	if cfg.Backtest.InitialCapital != 250000 {
		t.Errorf("Backtest.InitialCapital = %f, want 250000", cfg.Backtest.InitialCapital)
	}
	if cfg.Backtest.CommissionBps != 10 || cfg.Backtest.SlippageBps != 5 {
		t.Errorf("Backtest costs = %f/%f, want 10/5", cfg.Backtest.CommissionBps, cfg.Backtest.SlippageBps)
	}
	if cfg.Backtest.Allocation != "proportional" {
		t.Errorf("Backtest.Allocation = %q, want %q", cfg.Backtest.Allocation, "proportional")
	}
	if len(cfg.Gather.Stooq.Symbols) != 3 || cfg.Gather.Stooq.Symbols[0] != "pko" {
		t.Errorf("Gather.Stooq.Symbols = %v, want [pko pzu kgh]", cfg.Gather.Stooq.Symbols)
	}
	if cfg.Alpaca.APIKey != "test-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q", cfg.Alpaca.APIKey, "test-key")
	}
}

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("GPWQUANT_DATA_DIR")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}

	if cfg.Backtest.InitialCapital != 100_000 {
		t.Errorf("default InitialCapital = %f, want 100000", cfg.Backtest.InitialCapital)
	}
	if cfg.Backtest.CommissionBps != 5 || cfg.Backtest.SlippageBps != 2 {
		t.Errorf("default costs = %f/%f, want 5/2", cfg.Backtest.CommissionBps, cfg.Backtest.SlippageBps)
	}
	if cfg.Backtest.TradingDaysPerYear != 252 {
		t.Errorf("default TradingDaysPerYear = %d, want 252", cfg.Backtest.TradingDaysPerYear)
	}
	if cfg.Backtest.Allocation != "split-even" {
		t.Errorf("default Allocation = %q, want %q", cfg.Backtest.Allocation, "split-even")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
storage:
  data_dir: "/original/data"
alpaca:
  api_key: "yaml-key"
  api_secret: "yaml-secret"
`)

	path := filepath.Join(t.TempDir(), "gpwquant.yaml")
	if err := os.WriteFile(path, yamlContent, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	os.Setenv("GPWQUANT_DATA_DIR", "/env/data")
	os.Setenv("ALPACA_API_KEY", "env-key")
	os.Unsetenv("APCA_API_KEY_ID")
	os.Unsetenv("APCA_API_SECRET_KEY")
	defer os.Unsetenv("GPWQUANT_DATA_DIR")
	defer os.Unsetenv("ALPACA_API_KEY")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("Storage.DataDir = %q, want %q (env override)", cfg.Storage.DataDir, "/env/data")
	}
	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (env override)", cfg.Alpaca.APIKey, "env-key")
	}
	// api_secret should remain from YAML since no env override was set.
	if cfg.Alpaca.APISecret != "yaml-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q (from YAML)", cfg.Alpaca.APISecret, "yaml-secret")
	}
}
