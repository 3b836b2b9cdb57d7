package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rkondo/trendsim/batch"
	"github.com/rkondo/trendsim/config"
	"github.com/rkondo/trendsim/report"
	"github.com/rkondo/trendsim/storage"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Rebuild the aggregate report for an annotated prefix",
	Long: `Report aggregates the annotated trades of every instrument under a
prefix into per-instrument statistics (trade count, win rate, profit factor,
expected value) and writes report.csv next to the series.

Example:
  trendsim report -f config.yaml --prefix forward_test`,
	RunE: runReport,
}

var reportPrefix string

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportPrefix, "prefix", "", "storage prefix holding annotated series (defaults to the simulate prefix)")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	prefix := reportPrefix
	if prefix == "" {
		prefix = cfg.Storage.SimulatePrefix
	}

	symbols, err := loadTickerSymbols(ctx, store, cfg.Storage.InputPrefix)
	if err != nil {
		return err
	}

	if err := generateReport(ctx, cfg, store, prefix, symbols); err != nil {
		return err
	}

	log.Info().Str("prefix", prefix).Msg("report finish")
	fmt.Printf("Report written: %s\n", storage.ReportKey(prefix))
	return nil
}

// generateReport aggregates every instrument under prefix over the
// configured window and writes report.csv there. Instruments that fail to
// load are logged and skipped.
func generateReport(ctx context.Context, cfg *config.Config, store storage.Store, prefix string, symbols []string) error {
	index := make(map[string]int, len(symbols))
	for i, symbol := range symbols {
		index[symbol] = i
	}
	records := make([]report.Record, len(symbols))

	results := batch.Run(ctx, symbols, cfg.Batch.Workers, func(ctx context.Context, symbol string) error {
		s, err := loadSeries(ctx, store, prefix, symbol)
		if err != nil {
			return err
		}
		records[index[symbol]] = report.Generate(s, cfg.Portfolio.StartDate, cfg.Portfolio.EndDate)
		return nil
	})

	kept := make([]report.Record, 0, len(records))
	for _, r := range results {
		if r.Err == nil {
			kept = append(kept, records[index[r.TickerSymbol]])
		}
	}
	if len(kept) == 0 {
		return fmt.Errorf("report: no instrument succeeded")
	}

	body, err := report.Marshal(kept)
	if err != nil {
		return err
	}
	return store.Put(ctx, storage.ReportKey(prefix), body)
}

// logResults reports batch failures and returns the succeeding symbols in
// sorted order.
func logResults(log zerolog.Logger, stage string, results []batch.Result) []string {
	var succeeded []string
	for _, r := range results {
		if r.Err != nil {
			log.Error().Str("ticker_symbol", r.TickerSymbol).Err(r.Err).Msg(stage + " instrument failed")
			continue
		}
		succeeded = append(succeeded, r.TickerSymbol)
	}
	return succeeded
}
