// Package config loads the gpwquant YAML configuration and applies
// environment variable overrides.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the gpwquant system.
type Config struct {
	Storage  Storage        `yaml:"storage"`
	Logging  Logging        `yaml:"logging"`
	Backtest BacktestConfig `yaml:"backtest"`
	Gather   GatherConfig   `yaml:"gather"`
	Alpaca   Alpaca         `yaml:"alpaca"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
	ResultsDir string `yaml:"results_dir"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// BacktestConfig holds the default simulation parameters. CLI flags override
// these per run; the values here are the run-independent house defaults.
type BacktestConfig struct {
	InitialCapital     float64 `yaml:"initial_capital"`
	CommissionBps      float64 `yaml:"commission_bps"`
	SlippageBps        float64 `yaml:"slippage_bps"`
	MaxGrossLeverage   float64 `yaml:"max_gross_leverage"`
	TradingDaysPerYear int     `yaml:"trading_days_per_year"`
	Allocation         string  `yaml:"allocation"`
}

// GatherConfig controls data gathering for the supported sources.
type GatherConfig struct {
	Stooq StooqGatherConfig `yaml:"stooq"`
	US    USGatherConfig    `yaml:"us"`
}

// StooqGatherConfig holds parameters for the GPW daily-bar fetcher.
type StooqGatherConfig struct {
	Symbols         []string `yaml:"symbols"`
	StartDate       string   `yaml:"start_date"`
	RateLimitPerMin int      `yaml:"rate_limit_per_min"`
}

// USGatherConfig holds parameters for the US (benchmark) daily-bar fetcher.
type USGatherConfig struct {
	Symbols   []string `yaml:"symbols"`
	StartDate string   `yaml:"start_date"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	DataURL   string `yaml:"data_url"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no config file is given.
// Backtest defaults follow the house convention: 5 bps commission, 2 bps
// slippage, gross leverage capped at 1.0, 252 trading days per year.
func Default() *Config {
	return &Config{
		Storage: Storage{
			DataDir:    "data",
			SQLitePath: "data/gpwquant.db",
			ResultsDir: "data/backtests",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Backtest: BacktestConfig{
			InitialCapital:     100_000,
			CommissionBps:      5,
			SlippageBps:        2,
			MaxGrossLeverage:   1.0,
			TradingDaysPerYear: 252,
			Allocation:         "split-even",
		},
		Gather: GatherConfig{
			Stooq: StooqGatherConfig{
				StartDate:       "2000-01-01",
				RateLimitPerMin: 30,
			},
			US: USGatherConfig{
				Symbols:   []string{"SPY"},
				StartDate: "2000-01-01",
			},
		},
	}
}

// Load reads the YAML configuration file at the given path, parses it on top
// of the defaults, and then applies environment variable overrides. An empty
// path yields the defaults (still subject to env overrides).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GPWQUANT_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("GPWQUANT_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("GPWQUANT_RESULTS_DIR"); v != "" {
		cfg.Storage.ResultsDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	// Standard Alpaca env vars (highest priority — canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
