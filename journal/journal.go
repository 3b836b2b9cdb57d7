// Package journal persists the portfolio backtest outputs: the buy/sell
// action ledger and the daily fund/asset series.
package journal

// ActionRecord is one ledger row. Profit, ProfitRate and Tax are only set on
// sell actions; buys leave them empty.
type ActionRecord struct {
	Date         string
	TickerSymbol string
	Action       string // "buy" or "sell"
	Price        float64
	Stocks       int64
	Profit       *float64
	ProfitRate   *float64
	Fee          float64
	Tax          *float64
}

// DailyRecord is the end-of-day snapshot of the capital pool.
type DailyRecord struct {
	Date  string
	Fund  float64
	Asset float64
}

type Journal interface {
	RecordAction(ActionRecord) error
	RecordDaily(DailyRecord) error
	Close() error
}
