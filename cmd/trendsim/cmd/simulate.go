package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rkondo/trendsim/batch"
	"github.com/rkondo/trendsim/sim"
	"github.com/rkondo/trendsim/signals"
	"github.com/rkondo/trendsim/storage"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate trades over every instrument and build training labels",
	Long: `Simulate runs the crossover signal generator and the position state
machine over every instrument under the input prefix, writes the annotated
series under the simulate prefix, and finishes with the aggregate report.

With --exhaustive the signal gate is skipped and a hypothetical trade opens
at every bar, which produces denser training data.

Example:
  trendsim simulate -f config.yaml`,
	RunE: runSimulate,
}

var simExhaustive bool

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().BoolVar(&simExhaustive, "exhaustive", false, "open a hypothetical trade at every bar instead of on signals")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	symbols, err := loadTickerSymbols(ctx, store, cfg.Storage.InputPrefix)
	if err != nil {
		return err
	}

	simParams := sim.Params{
		LosscutRate:       cfg.Simulate.LosscutRate,
		TakeProfitRate:    cfg.Simulate.TakeProfitRate,
		MinimumProfitRate: cfg.Simulate.MinimumProfitRate,
	}
	sigParams := signals.Params{Short: cfg.Simulate.ShortSMA, Long: cfg.Simulate.LongSMA}

	log.Info().Int("instruments", len(symbols)).Bool("exhaustive", simExhaustive).Msg("simulate start")

	results := batch.Run(ctx, symbols, cfg.Batch.Workers, func(ctx context.Context, symbol string) error {
		s, err := loadSeries(ctx, store, cfg.Storage.InputPrefix, symbol)
		if err != nil {
			return err
		}

		if simExhaustive {
			if err := sim.Exhaustive(s, simParams); err != nil {
				return err
			}
		} else {
			if err := signals.Apply(s, sigParams); err != nil {
				return err
			}
			if _, err := sim.Run(s, simParams); err != nil {
				return err
			}
		}
		sim.ApplyLabels(s, simParams.MinimumProfitRate)

		return storeSeries(ctx, store, cfg.Storage.SimulatePrefix, s)
	})

	succeeded := logResults(log, "simulate", results)
	if len(succeeded) == 0 {
		return fmt.Errorf("simulate: no instrument succeeded")
	}

	if err := generateReport(ctx, cfg, store, cfg.Storage.SimulatePrefix, succeeded); err != nil {
		return err
	}

	log.Info().Int("succeeded", len(succeeded)).Int("failed", len(results)-len(succeeded)).Msg("simulate finish")
	fmt.Printf("Simulated %d instruments (%d failed)\n", len(succeeded), len(results)-len(succeeded))
	fmt.Printf("  Report: %s\n", storage.ReportKey(cfg.Storage.SimulatePrefix))

	return nil
}
