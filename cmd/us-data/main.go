// Command us-data backfills daily US benchmark bars from Alpaca into the
// Parquet store.
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

	"github.com/joho/godotenv"

	"gpwquant/internal/config"
	"gpwquant/internal/gather"
	"gpwquant/internal/gather/us"
	"gpwquant/internal/store"
	"gpwquant/internal/util"
)

func main() {
	_ = godotenv.Load()

	var (
		symbols   = flag.String("symbols", "", "comma-separated US symbols (default: config list)")
		startDate = flag.String("start-date", "", "backfill start (YYYY-MM-DD, default: config)")
		cfgPath   = flag.String("config", "", "path to config YAML")
	)
	flag.Parse()

	cfg, err := config.Load(resolveConfigPath(*cfgPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
		logger.Error("missing Alpaca credentials: set APCA_API_KEY_ID and APCA_API_SECRET_KEY")
		os.Exit(1)
	}

	symbolList := cfg.Gather.US.Symbols
	if *symbols != "" {
		symbolList = splitSymbols(*symbols)
	}

	start := cfg.Gather.US.StartDate
	if *startDate != "" {
		start = *startDate
	}
	var window gather.DateRange
	if start != "" {
		if window.Start, err = util.ParseDate(start); err != nil {
			logger.Error("invalid start date", "err", err)
			os.Exit(1)
		}
	}

	pstore := store.NewParquetStore(cfg.Storage.DataDir)
	gatherer := us.NewDailyBarGatherer(
		cfg.Alpaca.APIKey,
		cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL,
		pstore,
		symbolList,
		window,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting us-data backfill", "symbols", len(symbolList))
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
