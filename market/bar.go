package market

import "fmt"

// Signal marks a moving-average crossover on a bar. At most one signal is
// recorded per bar.
type Signal string

const (
	SignalNone Signal = ""
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
)

// Bar is a single daily price bar. ID is a dense integer sequence per
// instrument; Date is an ISO calendar date (2006-01-02) ascending with ID.
type Bar struct {
	ID            int
	Date          string
	Open          float64
	High          float64
	Low           float64
	Close         float64
	AdjustedClose float64
}

// Row is a Bar plus the columns the simulator and forward tester append.
// Pointer fields model empty cells in the persisted CSV.
type Row struct {
	Bar

	Signal  Signal
	Predict *int
	Action  string

	BuyPrice   *float64
	SellPrice  *float64
	Profit     *float64
	ProfitRate *float64
	SellID     *int

	PredictTargetValue *float64
	PredictTargetLabel *int
}

// ClearTrade drops the simulated trade outcome from the row. The forward
// tester calls this on every bar that fails its gate, whether or not a trade
// was scheduled there.
func (r *Row) ClearTrade() {
	r.BuyPrice = nil
	r.SellPrice = nil
	r.Profit = nil
	r.ProfitRate = nil
	r.SellID = nil
}

// Series is the ordered bar sequence for one instrument.
type Series struct {
	TickerSymbol string
	Rows         []Row
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Rows) }

// IndexByDate maps each bar date to its position in Rows. Dates are assumed
// unique within an instrument.
func (s *Series) IndexByDate() map[string]int {
	m := make(map[string]int, len(s.Rows))
	for i := range s.Rows {
		m[s.Rows[i].Date] = i
	}
	return m
}

// DataIntegrityError reports a value in a price series that the simulation
// cannot act on, such as a zero exit price.
type DataIntegrityError struct {
	TickerSymbol string
	BarID        int
	Reason       string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity: %s bar %d: %s", e.TickerSymbol, e.BarID, e.Reason)
}
