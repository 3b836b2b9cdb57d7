package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rkondo/trendsim/config"
	"github.com/rkondo/trendsim/journal"
	"github.com/rkondo/trendsim/market"
	"github.com/rkondo/trendsim/portfolio"
	"github.com/rkondo/trendsim/report"
	"github.com/rkondo/trendsim/storage"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the day-stepped portfolio backtest over the forward test",
	Long: `Backtest selects the trading universe from the forward-test report,
then steps a shared capital pool through every calendar day of the test
window: scheduled sells, eligible buys, mark-to-market, valuation. The
action ledger and daily fund/asset series go to the journal and back to
storage.

Example:
  trendsim backtest -f config.yaml`,
	RunE: runBacktest,
}

func init() {
	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	body, err := store.Get(ctx, storage.ReportKey(cfg.Storage.ForwardPrefix))
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}
	records, err := report.Read(bytes.NewReader(body))
	if err != nil {
		return err
	}

	universe := report.SelectUniverse(records, cfg.Portfolio.ProfitFactorFloor, cfg.Portfolio.TopK)
	log.Info().Int("universe", len(universe)).Msg("universe selected")

	prices := make(map[string]*market.Series, len(universe))
	for _, symbol := range universe {
		s, err := loadSeries(ctx, store, cfg.Storage.ForwardPrefix, symbol)
		if err != nil {
			log.Error().Str("ticker_symbol", symbol).Err(err).Msg("load series failed")
			continue
		}
		prices[symbol] = s
	}

	j, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	start, end := cfg.Window()
	params := portfolio.Params{
		InitialAsset:  cfg.Portfolio.InitialAsset,
		AvailableRate: cfg.Portfolio.AvailableRate,
		FeeRate:       cfg.Portfolio.FeeRate,
		TaxRate:       cfg.Portfolio.TaxRate,
		Start:         start,
		End:           end,
	}

	bt := portfolio.New(params, universe, prices, j, log)
	actions, daily, err := bt.Run()
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	actionBody, err := journal.MarshalActions(actions)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, storage.ActionKey(cfg.Storage.ForwardPrefix), actionBody); err != nil {
		return err
	}

	dailyBody, err := journal.MarshalDaily(daily)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, storage.ResultKey(cfg.Storage.ForwardPrefix), dailyBody); err != nil {
		return err
	}

	final := params.InitialAsset
	if len(daily) > 0 {
		final = daily[len(daily)-1].Asset
	}

	log.Info().Int("actions", len(actions)).Float64("final_asset", final).Msg("backtest finish")
	fmt.Printf("Backtest complete!\n")
	fmt.Printf("  Actions: %d\n", len(actions))
	fmt.Printf("  Final fund: %.2f\n", bt.Fund())
	fmt.Printf("  Final asset: %.2f\n", final)

	return nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.ActionsFile, cfg.Journal.ResultsFile)
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
}
