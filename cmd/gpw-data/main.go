// Command gpw-data backfills daily GPW bars from Stooq into the Parquet
// store.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gpwquant/internal/config"
	"gpwquant/internal/gather"
	"gpwquant/internal/gather/stooq"
	"gpwquant/internal/store"
	"gpwquant/internal/util"
)

func main() {
	_ = godotenv.Load()

	var (
		symbols   = flag.String("symbols", "", "comma-separated Stooq symbols (default: config list)")
		startDate = flag.String("start-date", "", "backfill start (YYYY-MM-DD, default: config)")
		endDate   = flag.String("end-date", "", "backfill end (YYYY-MM-DD, default: today)")
		cfgPath   = flag.String("config", "", "path to config YAML")
	)
	flag.Parse()

	cfg, err := config.Load(resolveConfigPath(*cfgPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	symbolList := cfg.Gather.Stooq.Symbols
	if *symbols != "" {
		symbolList = splitSymbols(*symbols)
	}
	if len(symbolList) == 0 {
		logger.Error("no symbols configured: set gather.stooq.symbols or -symbols")
		os.Exit(1)
	}

	window, err := resolveWindow(cfg.Gather.Stooq.StartDate, *startDate, *endDate)
	if err != nil {
		logger.Error("invalid window", "err", err)
		os.Exit(1)
	}

	pstore := store.NewParquetStore(cfg.Storage.DataDir)
	gatherer := stooq.NewDailyBarGatherer(pstore, symbolList, window, cfg.Gather.Stooq.RateLimitPerMin)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting gpw-data backfill", "symbols", len(symbolList))
	if err := gatherer.Run(ctx); err != nil {
		log.Fatalf("backfill error: %v", err)
	}
}

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

func splitSymbols(s string) []string {
	var out []string
	for _, sym := range strings.Split(s, ",") {
		if sym = strings.TrimSpace(sym); sym != "" {
			out = append(out, sym)
		}
	}
	return out
}

func resolveWindow(cfgStart, flagStart, flagEnd string) (gather.DateRange, error) {
	var window gather.DateRange
	var err error

	start := cfgStart
	if flagStart != "" {
		start = flagStart
	}
	if start != "" {
		if window.Start, err = util.ParseDate(start); err != nil {
			return window, err
		}
	}
	if flagEnd != "" {
		if window.End, err = util.ParseDate(flagEnd); err != nil {
			return window, err
		}
	} else {
		window.End = time.Now()
	}
	return window, nil
}
