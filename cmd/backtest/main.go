// Command backtest replays a signal table through the simulation engine and
// writes the run's equity curve, daily diagnostics, and summary metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"gpwquant/internal/backtest"
	"gpwquant/internal/config"
	"gpwquant/internal/domain"
	"gpwquant/internal/report"
	"gpwquant/internal/store"
	"gpwquant/internal/util"
)

func main() {
	_ = godotenv.Load()

	var (
		signalsPath = flag.String("signals", "", "path to a signal table (.csv or .parquet)")
		strategy    = flag.String("strategy", "", "strategy name; with no -signals, reads its stored signal table")
		mode        = flag.String("mode", "single", "simulation mode: single or portfolio")
		symbol      = flag.String("symbol", "", "symbol to simulate (single mode)")
		capital     = flag.Float64("initial-capital", -1, "starting capital (overrides config)")
		commission  = flag.Float64("commission-bps", -1, "commission in basis points (overrides config)")
		slippage    = flag.Float64("slippage-bps", -1, "slippage in basis points (overrides config)")
		leverage    = flag.Float64("leverage", -1, "max gross leverage (overrides config)")
		allocation  = flag.String("allocation", "", "cross-sectional allocation: split-even or proportional")
		startDate   = flag.String("start-date", "", "inclusive window start (YYYY-MM-DD)")
		endDate     = flag.String("end-date", "", "inclusive window end (YYYY-MM-DD)")
		benchmark   = flag.String("benchmark", "", "path to a benchmark close series (.csv or .parquet)")
		runID       = flag.String("run-id", "", "run identifier (default: random UUID)")
		resultsDir  = flag.String("results-dir", "", "artifact directory (overrides config)")
		cfgPath     = flag.String("config", "", "path to config YAML")
	)
	flag.Parse()

	cfg, err := config.Load(resolveConfigPath(*cfgPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	// CLI overrides on top of the house defaults.
	if *capital >= 0 {
		cfg.Backtest.InitialCapital = *capital
	}
	if *commission >= 0 {
		cfg.Backtest.CommissionBps = *commission
	}
	if *slippage >= 0 {
		cfg.Backtest.SlippageBps = *slippage
	}
	if *leverage >= 0 {
		cfg.Backtest.MaxGrossLeverage = *leverage
	}
	if *allocation != "" {
		cfg.Backtest.Allocation = *allocation
	}
	if *resultsDir != "" {
		cfg.Storage.ResultsDir = *resultsDir
	}

	engineCfg, err := buildEngineConfig(cfg)
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	engine, err := backtest.NewEngine(engineCfg, logger)
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start, end, err := parseWindow(*startDate, *endDate)
	if err != nil {
		logger.Error("invalid window", "err", err)
		os.Exit(1)
	}

	records, err := loadSignals(ctx, cfg, *signalsPath, *strategy, start, end)
	if err != nil {
		logger.Error("loading signals failed", "err", err)
		os.Exit(1)
	}

	strategyName := *strategy
	if strategyName == "" && len(records) > 0 {
		strategyName = records[0].Strategy
	}

	panel, err := buildPanel(records)
	if err != nil {
		logger.Error("building signal panel failed", "err", err)
		os.Exit(1)
	}

	if *mode != "single" && *mode != "portfolio" {
		logger.Error("unknown mode", "mode", *mode)
		os.Exit(1)
	}
	if *mode == "single" {
		if *symbol == "" {
			logger.Error("single mode needs -symbol")
			os.Exit(1)
		}
		if !panel.HasSymbol(*symbol) {
			logger.Error("symbol not present in signal table", "symbol", *symbol)
			os.Exit(1)
		}
	}

	id := *runID
	if id == "" {
		scope := "portfolio"
		if *mode == "single" {
			scope = strings.ToLower(*symbol)
		}
		id = fmt.Sprintf("%s-%s-%s", *mode, scope, uuid.NewString())
	}
	writer := report.NewWriter(cfg.Storage.ResultsDir)

	panel = panel.Filter(start, end)
	if panel.Empty() || (*mode == "single" && !panel.HasSymbol(*symbol)) {
		logger.Warn("no observations in the requested window, writing empty report",
			"start", *startDate, "end", *endDate)
		res := &backtest.Result{Mode: backtest.Mode(*mode), Symbol: *symbol, Config: engineCfg}
		if _, err := writer.WriteResult(id, res); err != nil {
			logger.Error("writing report failed", "err", err)
			os.Exit(1)
		}
		report.PrintSummary(os.Stdout, id, res)
		return
	}

	var res *backtest.Result
	if *mode == "single" {
		res, err = engine.RunSingle(panel, *symbol)
	} else {
		res, err = engine.RunPortfolio(panel)
	}
	if err != nil {
		logger.Error("simulation failed", "err", err)
		os.Exit(1)
	}

	if *benchmark != "" {
		if err := compareBenchmark(engine, res, *benchmark); err != nil {
			if errors.Is(err, backtest.ErrBenchmarkUnavailable) {
				logger.Warn("benchmark comparison skipped", "err", err)
			} else {
				logger.Error("benchmark comparison failed", "err", err)
				os.Exit(1)
			}
		}
	}

	dir, err := writer.WriteResult(id, res)
	if err != nil {
		logger.Error("writing report failed", "err", err)
		os.Exit(1)
	}
	logger.Info("artifacts written", "dir", dir)

	report.PrintSummary(os.Stdout, id, res)

	if err := recordRun(ctx, cfg, id, strategyName, res); err != nil {
		// The artifacts on disk are the source of truth; a registry failure
		// should not fail the run.
		logger.Warn("recording run failed", "err", err)
	}
}

// resolveConfigPath picks the config file: explicit flag, then env var, then
// the default path when it exists.
func resolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv("GPWQUANT_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("config/gpwquant.yaml"); err == nil {
		return "config/gpwquant.yaml"
	}
	return ""
}

func buildEngineConfig(cfg *config.Config) (backtest.Config, error) {
	policy, err := backtest.ParseAllocationPolicy(cfg.Backtest.Allocation)
	if err != nil {
		return backtest.Config{}, err
	}
	return backtest.Config{
		InitialCapital:     cfg.Backtest.InitialCapital,
		CommissionBps:      cfg.Backtest.CommissionBps,
		SlippageBps:        cfg.Backtest.SlippageBps,
		MaxGrossLeverage:   cfg.Backtest.MaxGrossLeverage,
		TradingDaysPerYear: cfg.Backtest.TradingDaysPerYear,
		Allocation:         policy,
	}, nil
}

func parseWindow(startStr, endStr string) (start, end time.Time, err error) {
	if startStr != "" {
		if start, err = util.ParseDate(startStr); err != nil {
			return
		}
	}
	if endStr != "" {
		if end, err = util.ParseDate(endStr); err != nil {
			return
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		err = fmt.Errorf("end date %s before start date %s", endStr, startStr)
	}
	return
}

// loadSignals reads the signal table from an explicit file, or from the
// strategy's stored table when only -strategy is given.
func loadSignals(ctx context.Context, cfg *config.Config, path, strategy string, start, end time.Time) ([]domain.SignalRecord, error) {
	if path != "" {
		return store.ReadSignalsTable(path)
	}
	if strategy != "" {
		return store.NewParquetStore(cfg.Storage.DataDir).ReadSignals(ctx, strategy, start, end)
	}
	return nil, fmt.Errorf("need -signals or -strategy")
}

// buildPanel converts signal records to panel observations, deriving daily
// returns from the close chain.
func buildPanel(records []domain.SignalRecord) (*backtest.Panel, error) {
	obs := make([]backtest.Observation, 0, len(records))
	for _, r := range records {
		if !r.Valid() {
			return nil, fmt.Errorf("invalid signal %d for %s on %s",
				r.Signal, r.Symbol, r.Date.Format(util.DateLayout))
		}
		obs = append(obs, backtest.Observation{
			Symbol: r.Symbol,
			Date:   r.Date,
			Close:  r.Close,
			Signal: r.Signal,
		})
	}
	rets, err := backtest.ComputeReturns(obs)
	if err != nil {
		return nil, err
	}
	return backtest.NewPanel(rets)
}

func compareBenchmark(engine *backtest.Engine, res *backtest.Result, path string) error {
	bars, err := store.ReadBenchmarkTable(path)
	if err != nil {
		return err
	}
	points := make([]backtest.PricePoint, 0, len(bars))
	for _, b := range bars {
		points = append(points, backtest.PricePoint{Date: b.Date, Close: b.Close})
	}
	_, err = engine.CompareBenchmark(res, backtest.ReturnsFromCloses(points))
	return err
}

func recordRun(ctx context.Context, cfg *config.Config, id, strategy string, res *backtest.Result) error {
	registry, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		return err
	}
	defer registry.Close()

	run := &store.RunRecord{
		ID:             id,
		Strategy:       strategy,
		Mode:           string(res.Mode),
		Symbol:         res.Symbol,
		Days:           res.Summary.Days,
		InitialCapital: res.Summary.InitialCapital,
		FinalEquity:    res.Summary.FinalEquity,
		TotalReturn:    res.Summary.TotalReturn,
		AnnReturn:      res.Summary.AnnReturn,
		AnnVol:         res.Summary.AnnVol,
		Sharpe:         res.Summary.Sharpe,
		MaxDrawdown:    res.Summary.MaxDrawdown,
	}
	if len(res.EquityCurve) > 0 {
		run.StartDate = res.EquityCurve[0].Date
		run.EndDate = res.EquityCurve[len(res.EquityCurve)-1].Date
	}
	return registry.SaveRun(ctx, run)
}
