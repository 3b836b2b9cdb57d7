// Package sim turns a signalled price series into closed trades using
// ratcheting stop-loss / take-profit rules, and derives the supervised
// training label consumed by classifier training.
package sim

import "github.com/rkondo/trendsim/market"

// Reason records which exit rule closed a trade.
type Reason string

const (
	ReasonTakeProfit Reason = "take profit"
	ReasonLossCut    Reason = "losscut"
	ReasonSellSignal Reason = "sell signal"
)

// Trade is one closed round trip. ProfitRate divides by the sell price, not
// the buy price; downstream ranking depends on that exact definition.
type Trade struct {
	BuyID      int
	BuyPrice   float64
	SellID     int
	SellPrice  float64
	Reason     Reason
	Profit     float64
	ProfitRate float64
}

// Params are the simulation thresholds.
type Params struct {
	LosscutRate       float64
	TakeProfitRate    float64
	MinimumProfitRate float64
}

// DefaultParams mirrors the production thresholds.
func DefaultParams() Params {
	return Params{
		LosscutRate:       0.98,
		TakeProfitRate:    0.95,
		MinimumProfitRate: 0.03,
	}
}

// position state
type state int

const (
	flat state = iota
	opened
)

// Run walks the series with a Flat/Open state machine. A position opens at
// bar i's open when bar i-1 carried a buy signal. While open, each bar is
// evaluated in fixed priority: a take-profit flag set on the previous bar
// closes at the open; a low under the losscut threshold closes at the low;
// a high under the take-profit threshold arms the flag for the next bar;
// a sell signal on the previous bar closes at the open. Both thresholds then
// ratchet upward and never regress. A position still open at series end is
// discarded without a trade.
//
// Each closed trade annotates its entry row (buy/sell price, profit,
// profit_rate, sell bar id) and is returned in entry order.
func Run(s *market.Series, p Params) ([]Trade, error) {
	var trades []Trade

	st := flat
	buyIdx := -1
	losscutPrice := 0.0
	takeProfitPrice := 0.0
	takeProfitFlag := false

	for i := 1; i < s.Len(); i++ {
		row := &s.Rows[i]
		prev := &s.Rows[i-1]

		if st == opened {
			switch {
			case takeProfitFlag:
				t, err := closeTrade(s, buyIdx, row, row.Open, ReasonTakeProfit)
				if err != nil {
					return nil, err
				}
				trades = append(trades, t)
				st = flat

			case row.Low < losscutPrice:
				t, err := closeTrade(s, buyIdx, row, row.Low, ReasonLossCut)
				if err != nil {
					return nil, err
				}
				trades = append(trades, t)
				st = flat

			case row.High < takeProfitPrice:
				takeProfitFlag = true

			case prev.Signal == market.SignalSell:
				t, err := closeTrade(s, buyIdx, row, row.Open, ReasonSellSignal)
				if err != nil {
					return nil, err
				}
				trades = append(trades, t)
				st = flat
			}
		}

		if st == flat && prev.Signal == market.SignalBuy {
			st = opened
			buyIdx = i
			losscutPrice = row.Close * p.LosscutRate
			takeProfitPrice = row.High * p.TakeProfitRate
			takeProfitFlag = false
		}

		if st == opened {
			if v := row.Close * p.LosscutRate; v > losscutPrice {
				losscutPrice = v
			}
			if v := row.High * p.TakeProfitRate; v > takeProfitPrice {
				takeProfitPrice = v
			}
		}
	}

	return trades, nil
}

func closeTrade(s *market.Series, buyIdx int, sellRow *market.Row, sellPrice float64, reason Reason) (Trade, error) {
	if sellPrice == 0 {
		return Trade{}, &market.DataIntegrityError{
			TickerSymbol: s.TickerSymbol,
			BarID:        sellRow.ID,
			Reason:       "zero sell price",
		}
	}

	buyRow := &s.Rows[buyIdx]
	buyPrice := buyRow.Open
	profit := sellPrice - buyPrice
	profitRate := profit / sellPrice

	t := Trade{
		BuyID:      buyRow.ID,
		BuyPrice:   buyPrice,
		SellID:     sellRow.ID,
		SellPrice:  sellPrice,
		Reason:     reason,
		Profit:     profit,
		ProfitRate: profitRate,
	}

	bp, sp, pf, pr, sid := buyPrice, sellPrice, profit, profitRate, sellRow.ID
	buyRow.BuyPrice = &bp
	buyRow.SellPrice = &sp
	buyRow.Profit = &pf
	buyRow.ProfitRate = &pr
	buyRow.SellID = &sid

	return t, nil
}
