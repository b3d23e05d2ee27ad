// Command signals runs a built-in strategy preset over stored daily bars and
// writes the resulting signal table.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gpwquant/internal/config"
	"gpwquant/internal/domain"
	"gpwquant/internal/store"
	"gpwquant/internal/strategy"
	"gpwquant/internal/strategy/builtins"
	"gpwquant/internal/util"
)

func main() {
	_ = godotenv.Load()

	var (
		name      = flag.String("strategy", "", "strategy preset to run")
		list      = flag.Bool("list", false, "list available presets and exit")
		market    = flag.String("market", string(domain.MarketGPW), "market to read bars from: gpw or us")
		symbols   = flag.String("symbols", "", "comma-separated symbols (default: every stored symbol)")
		startDate = flag.String("start-date", "", "inclusive bar window start (YYYY-MM-DD)")
		endDate   = flag.String("end-date", "", "inclusive bar window end (YYYY-MM-DD)")
		outPath   = flag.String("out", "", "also export the table to this CSV file")
		cfgPath   = flag.String("config", "", "path to config YAML")
	)
	flag.Parse()

	registry := strategy.NewRegistry()
	builtins.RegisterAll(registry)

	if *list {
		for _, n := range registry.List() {
			fmt.Println(n)
		}
		return
	}

	cfg, err := config.Load(resolveConfigPath(*cfgPath))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	strat, ok := registry.Get(*name)
	if !ok {
		logger.Error("unknown strategy", "strategy", *name, "available", registry.List())
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start, err := parseOptionalDate(*startDate)
	if err != nil {
		logger.Error("invalid start date", "err", err)
		os.Exit(1)
	}
	end, err := parseOptionalDate(*endDate)
	if err != nil {
		logger.Error("invalid end date", "err", err)
		os.Exit(1)
	}

	pstore := store.NewParquetStore(cfg.Storage.DataDir)

	symbolList, err := resolveSymbols(ctx, pstore, domain.Market(*market), *symbols)
	if err != nil {
		logger.Error("resolving symbols failed", "err", err)
		os.Exit(1)
	}
	if len(symbolList) == 0 {
		logger.Error("no symbols to process", "market", *market)
		os.Exit(1)
	}

	var bars []domain.Bar
	for _, sym := range symbolList {
		b, err := pstore.ReadBars(ctx, domain.Market(*market), sym, start, end)
		if err != nil {
			logger.Error("reading bars failed", "symbol", sym, "err", err)
			os.Exit(1)
		}
		if len(b) == 0 {
			logger.Warn("no bars for symbol", "symbol", sym)
			continue
		}
		bars = append(bars, b...)
	}

	records, err := strategy.GenerateSignals(ctx, strat, bars)
	if err != nil {
		logger.Error("generating signals failed", "err", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		logger.Warn("strategy produced no signals")
		return
	}

	if err := pstore.WriteSignals(ctx, records); err != nil {
		logger.Error("writing signal table failed", "err", err)
		os.Exit(1)
	}
	logger.Info("signal table written",
		"strategy", strat.Name(), "symbols", len(symbolList), "records", len(records))

	if *outPath != "" {
		if err := exportCSV(*outPath, records); err != nil {
			logger.Error("exporting CSV failed", "err", err)
			os.Exit(1)
		}
		logger.Info("CSV exported", "path", *outPath)
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

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return util.ParseDate(s)
}

func resolveSymbols(ctx context.Context, s store.BarStore, market domain.Market, flagValue string) ([]string, error) {
	if flagValue != "" {
		var out []string
		for _, sym := range strings.Split(flagValue, ",") {
			if sym = strings.TrimSpace(sym); sym != "" {
				out = append(out, sym)
			}
		}
		return out, nil
	}
	return s.ListSymbols(ctx, market)
}

func exportCSV(path string, records []domain.SignalRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"strategy", "symbol", "date", "close", "signal", "score"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Strategy,
			r.Symbol,
			r.Date.Format(util.DateLayout),
			strconv.FormatFloat(r.Close, 'g', -1, 64),
			strconv.Itoa(r.Signal),
			strconv.FormatFloat(r.Score, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
