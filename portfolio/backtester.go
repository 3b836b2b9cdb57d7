// Package portfolio simulates a shared capital pool trading the forward
// tester's output across many instruments, one calendar day at a time.
package portfolio

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rkondo/trendsim/journal"
	"github.com/rkondo/trendsim/market"
	"github.com/rkondo/trendsim/risk"
)

// Params configures a backtest window and its cost model.
type Params struct {
	InitialAsset  float64
	AvailableRate float64
	FeeRate       float64
	TaxRate       float64
	Start         time.Time
	End           time.Time
}

// DefaultParams mirrors the production run configuration.
func DefaultParams() Params {
	return Params{
		InitialAsset:  1_000_000,
		AvailableRate: 0.05,
		FeeRate:       0.001,
		TaxRate:       0.21,
	}
}

// Holding is one open position carrying its precomputed exit schedule.
type Holding struct {
	BuyPrice    float64
	Stocks      int64
	SellID      int
	SellPrice   float64
	LatestClose float64
}

// Backtester owns all mutable portfolio state. The day loop is inherently
// sequential; nothing here is safe for concurrent use.
type Backtester struct {
	params   Params
	universe []string
	prices   map[string]*market.Series
	dateIdx  map[string]map[string]int
	journal  journal.Journal
	log      zerolog.Logger

	fund     float64
	holdings map[string]*Holding
}

// New builds a backtester over the ranked universe. The universe slice fixes
// the buy-pass iteration order; prices must hold a series per universe
// entry. Instruments missing from prices are dropped from the universe.
func New(params Params, universe []string, prices map[string]*market.Series, j journal.Journal, log zerolog.Logger) *Backtester {
	kept := make([]string, 0, len(universe))
	dateIdx := make(map[string]map[string]int, len(universe))
	for _, symbol := range universe {
		s, ok := prices[symbol]
		if !ok {
			log.Warn().Str("ticker_symbol", symbol).Msg("universe instrument has no price series")
			continue
		}
		kept = append(kept, symbol)
		dateIdx[symbol] = s.IndexByDate()
	}

	return &Backtester{
		params:   params,
		universe: kept,
		prices:   prices,
		dateIdx:  dateIdx,
		journal:  j,
		log:      log,
		fund:     params.InitialAsset,
		holdings: make(map[string]*Holding),
	}
}

// Run walks every calendar day in [Start, End), applying the fixed phase
// order: sell scheduled exits, buy eligible entries, mark open positions to
// the day's close, then snapshot fund and asset. A missing bar skips that
// instrument for the day only.
func (b *Backtester) Run() ([]journal.ActionRecord, []journal.DailyRecord, error) {
	var (
		actions []journal.ActionRecord
		daily   []journal.DailyRecord
	)

	for day := b.params.Start; day.Before(b.params.End); day = day.AddDate(0, 0, 1) {
		date := day.Format("2006-01-02")

		sold, err := b.sell(date)
		if err != nil {
			return nil, nil, err
		}
		actions = append(actions, sold...)

		bought, err := b.buy(date)
		if err != nil {
			return nil, nil, err
		}
		actions = append(actions, bought...)

		b.mark(date)

		snapshot := journal.DailyRecord{Date: date, Fund: b.fund, Asset: b.asset()}
		daily = append(daily, snapshot)
		if b.journal != nil {
			if err := b.journal.RecordDaily(snapshot); err != nil {
				return nil, nil, err
			}
		}

		b.log.Debug().
			Str("date", date).
			Float64("fund", snapshot.Fund).
			Float64("asset", snapshot.Asset).
			Int("holdings", len(b.holdings)).
			Msg("day complete")
	}

	return actions, daily, nil
}

// sell realizes every holding whose scheduled exit bar lands on this date.
func (b *Backtester) sell(date string) ([]journal.ActionRecord, error) {
	var actions []journal.ActionRecord

	for _, symbol := range b.heldSymbols() {
		h := b.holdings[symbol]

		row, ok := b.rowOn(symbol, date)
		if !ok {
			continue
		}
		if h.SellID != row.ID {
			continue
		}

		if h.SellPrice == 0 {
			return nil, &market.DataIntegrityError{
				TickerSymbol: symbol,
				BarID:        row.ID,
				Reason:       "zero scheduled sell price",
			}
		}

		profit := (h.SellPrice - h.BuyPrice) * float64(h.Stocks)
		profitRate := profit / (h.SellPrice * float64(h.Stocks))
		fee := risk.Fee(h.SellPrice, h.Stocks, b.params.FeeRate)
		tax := risk.Tax(profit, b.params.TaxRate)

		b.fund += h.SellPrice*float64(h.Stocks) - fee - tax
		delete(b.holdings, symbol)

		action := journal.ActionRecord{
			Date:         date,
			TickerSymbol: symbol,
			Action:       "sell",
			Price:        h.SellPrice,
			Stocks:       h.Stocks,
			Profit:       &profit,
			ProfitRate:   &profitRate,
			Fee:          fee,
			Tax:          &tax,
		}
		actions = append(actions, action)
		if b.journal != nil {
			if err := b.journal.RecordAction(action); err != nil {
				return nil, err
			}
		}
	}

	return actions, nil
}

// buy opens positions for trade-eligible instruments, universe rank order,
// one position per instrument, skipping quietly when cash runs out.
func (b *Backtester) buy(date string) ([]journal.ActionRecord, error) {
	var actions []journal.ActionRecord

	for _, symbol := range b.universe {
		if _, held := b.holdings[symbol]; held {
			continue
		}

		row, ok := b.rowOn(symbol, date)
		if !ok {
			continue
		}
		if row.Action != "trade" {
			continue
		}
		if row.SellID == nil || row.SellPrice == nil {
			// Eligible bar without a resolved simulated exit; nothing to
			// schedule, so nothing to buy.
			continue
		}

		buyPrice := row.Open
		stocks := risk.Stocks(b.params.InitialAsset, b.params.AvailableRate, buyPrice)
		if stocks <= 0 {
			continue
		}

		fee := risk.Fee(buyPrice, stocks, b.params.FeeRate)
		if b.fund-buyPrice*float64(stocks)-fee <= 0 {
			continue
		}

		b.fund -= buyPrice*float64(stocks) + fee
		b.holdings[symbol] = &Holding{
			BuyPrice:  buyPrice,
			Stocks:    stocks,
			SellID:    *row.SellID,
			SellPrice: *row.SellPrice,
		}

		action := journal.ActionRecord{
			Date:         date,
			TickerSymbol: symbol,
			Action:       "buy",
			Price:        buyPrice,
			Stocks:       stocks,
			Fee:          fee,
		}
		actions = append(actions, action)
		if b.journal != nil {
			if err := b.journal.RecordAction(action); err != nil {
				return nil, err
			}
		}
	}

	return actions, nil
}

// mark updates each open holding to the day's close when a bar exists.
func (b *Backtester) mark(date string) {
	for _, symbol := range b.heldSymbols() {
		if row, ok := b.rowOn(symbol, date); ok {
			b.holdings[symbol].LatestClose = row.Close
		}
	}
}

// asset is fund plus the marked value of every open holding.
func (b *Backtester) asset() float64 {
	total := b.fund
	for _, h := range b.holdings {
		total += h.LatestClose * float64(h.Stocks)
	}
	return total
}

// Fund exposes the current cash balance, mainly for tests.
func (b *Backtester) Fund() float64 { return b.fund }

func (b *Backtester) heldSymbols() []string {
	symbols := make([]string, 0, len(b.holdings))
	for s := range b.holdings {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

func (b *Backtester) rowOn(symbol, date string) (*market.Row, bool) {
	idx, ok := b.dateIdx[symbol][date]
	if !ok {
		return nil, false
	}
	return &b.prices[symbol].Rows[idx], true
}
