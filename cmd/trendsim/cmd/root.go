package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rkondo/trendsim/config"
	"github.com/rkondo/trendsim/logger"
	"github.com/rkondo/trendsim/market"
	"github.com/rkondo/trendsim/storage"
)

var rootCmd = &cobra.Command{
	Use:   "trendsim",
	Short: "Backtest and forward-test mechanical stock trading rules",
	Long: `Trendsim simulates mechanical trading rules over historical stock price
series, gates them with a trained classifier, and runs a day-stepped
portfolio backtest over the gated trades.

Pipeline stages:
  - simulate: crossover signals, position simulation, training labels, report
  - forward-test: classifier predictions gate the simulated trades
  - backtest: shared capital pool traded over the forward-test window
  - report: aggregate per-instrument statistics alone`,
}

var cfgPath string

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "f", "", "path to config file (YAML or JSON)")
}

// setup loads the environment, configuration and logger shared by every
// subcommand.
func setup() (*config.Config, zerolog.Logger, error) {
	// Credentials for the object store live in .env in development.
	_ = godotenv.Load()

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, zerolog.Nop(), err
		}
		cfg = loaded
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	return cfg, log, nil
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return storage.NewS3(ctx, cfg.Storage.Bucket)
	case "local":
		return storage.NewLocal(cfg.Storage.Dir), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func loadTickerSymbols(ctx context.Context, store storage.Store, prefix string) ([]string, error) {
	body, err := store.Get(ctx, storage.CompaniesKey(prefix))
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}
	return market.ReadTickerSymbols(bytes.NewReader(body))
}

func loadSeries(ctx context.Context, store storage.Store, prefix, symbol string) (*market.Series, error) {
	body, err := store.Get(ctx, storage.SeriesKey(prefix, symbol))
	if err != nil {
		return nil, err
	}
	return market.ReadSeries(symbol, bytes.NewReader(body))
}

func storeSeries(ctx context.Context, store storage.Store, prefix string, s *market.Series) error {
	body, err := market.MarshalSeries(s)
	if err != nil {
		return err
	}
	return store.Put(ctx, storage.SeriesKey(prefix, s.TickerSymbol), body)
}
