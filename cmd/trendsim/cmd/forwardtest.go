package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rkondo/trendsim/batch"
	"github.com/rkondo/trendsim/features"
	"github.com/rkondo/trendsim/forward"
	"github.com/rkondo/trendsim/storage"
)

var forwardTestCmd = &cobra.Command{
	Use:   "forward-test",
	Short: "Gate simulated trades with the trained classifier",
	Long: `Forward-test scores each instrument's feature rows with its stored
model, writes the predictions onto the simulated series, and clears every
trade the gate rejects. The gated series and a fresh report land under the
forward prefix.

Example:
  trendsim forward-test -f config.yaml`,
	RunE: runForwardTest,
}

func init() {
	rootCmd.AddCommand(forwardTestCmd)
}

func runForwardTest(cmd *cobra.Command, args []string) error {
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

	variant := forward.VariantSignal
	if strings.ToLower(cfg.Forward.Variant) == "plain" {
		variant = forward.VariantPlain
	}

	log.Info().Int("instruments", len(symbols)).Str("variant", string(variant)).Msg("forward test start")

	results := batch.Run(ctx, symbols, cfg.Batch.Workers, func(ctx context.Context, symbol string) error {
		raw, err := loadSeries(ctx, store, cfg.Storage.InputPrefix, symbol)
		if err != nil {
			return err
		}
		feats := features.Build(raw, cfg.Forward.FeaturePeriod)

		s, err := loadSeries(ctx, store, cfg.Storage.SimulatePrefix, symbol)
		if err != nil {
			return err
		}

		body, err := store.Get(ctx, storage.ModelKey(cfg.Storage.ModelPrefix, symbol))
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		predictor, err := forward.ReadLinearModel(bytes.NewReader(body))
		if err != nil {
			return err
		}

		if err := forward.Test(ctx, s, feats, predictor, variant); err != nil {
			return err
		}

		return storeSeries(ctx, store, cfg.Storage.ForwardPrefix, s)
	})

	succeeded := logResults(log, "forward test", results)
	if len(succeeded) == 0 {
		return fmt.Errorf("forward test: no instrument succeeded")
	}

	if err := generateReport(ctx, cfg, store, cfg.Storage.ForwardPrefix, succeeded); err != nil {
		return err
	}

	log.Info().Int("succeeded", len(succeeded)).Int("failed", len(results)-len(succeeded)).Msg("forward test finish")
	fmt.Printf("Forward-tested %d instruments (%d failed)\n", len(succeeded), len(results)-len(succeeded))

	return nil
}
