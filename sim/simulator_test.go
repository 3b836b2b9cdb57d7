package sim

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/rkondo/trendsim/market"
)

type bar struct {
	o, h, l, c float64
}

func newSeries(t *testing.T, bars []bar) *market.Series {
	t.Helper()

	s := &market.Series{TickerSymbol: "1301"}
	for i, b := range bars {
		s.Rows = append(s.Rows, market.Row{
			Bar: market.Bar{
				ID:            i,
				Date:          fmt.Sprintf("2018-01-%02d", i+1),
				Open:          b.o,
				High:          b.h,
				Low:           b.l,
				Close:         b.c,
				AdjustedClose: b.c,
			},
		})
	}
	return s
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestRunSellSignalExit(t *testing.T) {
	s := newSeries(t, []bar{
		{100, 101, 99, 100},  // buy signal here
		{100, 105, 99, 102},  // entry at open: losscut 99.96, take profit 99.75
		{103, 106, 101, 104}, // sell signal here
		{105, 108, 102, 106}, // exit at open
	})
	s.Rows[0].Signal = market.SignalBuy
	s.Rows[2].Signal = market.SignalSell

	trades, err := Run(s, DefaultParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("want 1 trade, got %d", len(trades))
	}

	tr := trades[0]
	if tr.Reason != ReasonSellSignal {
		t.Fatalf("want sell signal exit, got %q", tr.Reason)
	}
	if tr.BuyID != 1 || tr.SellID != 3 {
		t.Fatalf("want buy 1 sell 3, got buy %d sell %d", tr.BuyID, tr.SellID)
	}
	if tr.BuyPrice != 100 || tr.SellPrice != 105 {
		t.Fatalf("want 100 -> 105, got %v -> %v", tr.BuyPrice, tr.SellPrice)
	}
	if !approxEqual(tr.ProfitRate, 5.0/105.0, 1e-12) {
		t.Fatalf("profit rate mismatch: got %v", tr.ProfitRate)
	}

	entry := s.Rows[1]
	if entry.BuyPrice == nil || entry.SellID == nil || *entry.SellID != 3 {
		t.Fatalf("entry row not annotated: %+v", entry)
	}
}

func TestRunProfitRateDividesBySellPrice(t *testing.T) {
	s := newSeries(t, []bar{
		{100, 101, 99, 100},  // buy signal here
		{100, 200, 100, 100}, // entry: losscut 98, take profit 190
		{110, 150, 99, 100},  // high under 190 arms the flag
		{120, 180, 110, 150}, // flag exits at open
	})
	s.Rows[0].Signal = market.SignalBuy

	trades, err := Run(s, DefaultParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("want 1 trade, got %d", len(trades))
	}

	tr := trades[0]
	if tr.Reason != ReasonTakeProfit {
		t.Fatalf("want take profit, got %q", tr.Reason)
	}
	if tr.Profit != 20 {
		t.Fatalf("want profit 20, got %v", tr.Profit)
	}
	if !approxEqual(tr.ProfitRate, 20.0/120.0, 1e-12) {
		t.Fatalf("want profit rate 20/120, got %v", tr.ProfitRate)
	}
}

// Once the take-profit flag is armed the next bar exits at the open even if
// that bar's low would also have tripped the losscut.
func TestRunTakeProfitBeatsLossCut(t *testing.T) {
	s := newSeries(t, []bar{
		{100, 101, 99, 100},
		{100, 200, 100, 100}, // entry: losscut 98, take profit 190
		{110, 150, 99, 100},  // arms the flag
		{120, 180, 1, 150},   // low 1 is far under losscut; flag still wins
	})
	s.Rows[0].Signal = market.SignalBuy

	trades, err := Run(s, DefaultParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("want 1 trade, got %d", len(trades))
	}
	if trades[0].Reason != ReasonTakeProfit {
		t.Fatalf("want take profit to win over losscut, got %q", trades[0].Reason)
	}
	if trades[0].SellPrice != 120 {
		t.Fatalf("want exit at open 120, got %v", trades[0].SellPrice)
	}
}

// The losscut threshold ratchets up with the close and never loosens when
// the close later falls.
func TestRunLossCutRatchet(t *testing.T) {
	s := newSeries(t, []bar{
		{100, 101, 99, 100},
		{100, 200, 100, 150}, // entry: losscut 147, take profit 190
		{180, 200, 148, 180}, // ratchet: losscut 176.4
		{180, 195, 177, 177}, // close falls; losscut stays 176.4
		{175, 195, 170, 174}, // low 170 < 176.4 but > 147: exits only via ratchet
	})
	s.Rows[0].Signal = market.SignalBuy

	trades, err := Run(s, DefaultParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("want 1 trade, got %d", len(trades))
	}

	tr := trades[0]
	if tr.Reason != ReasonLossCut {
		t.Fatalf("want losscut, got %q", tr.Reason)
	}
	if tr.SellPrice != 170 {
		t.Fatalf("want exit at the low 170, got %v", tr.SellPrice)
	}
	if tr.SellID != 4 {
		t.Fatalf("want exit on bar 4, got %d", tr.SellID)
	}
}

func TestRunUnresolvedPositionEmitsNoTrade(t *testing.T) {
	s := newSeries(t, []bar{
		{100, 101, 99, 100},
		{100, 200, 100, 150}, // entry
		{180, 200, 148, 180}, // no exit condition through series end
	})
	s.Rows[0].Signal = market.SignalBuy

	trades, err := Run(s, DefaultParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(trades) != 0 {
		t.Fatalf("want no trades, got %d", len(trades))
	}
	if s.Rows[1].BuyPrice != nil {
		t.Fatalf("unresolved position must not annotate the entry row")
	}
}

// A buy signal while a position is open never stacks a second position; it
// only takes effect once the first trade has closed.
func TestRunSingleOpenPosition(t *testing.T) {
	s := newSeries(t, []bar{
		{100, 101, 99, 100},  // buy signal
		{100, 200, 100, 150}, // entry: losscut 147, take profit 190
		{180, 200, 148, 180}, // buy signal while open; losscut ratchets to 176.4
		{180, 200, 149, 180}, // losscut closes here, then the signal re-enters
		{175, 195, 1, 174},   // second losscut
	})
	s.Rows[0].Signal = market.SignalBuy
	s.Rows[2].Signal = market.SignalBuy

	trades, err := Run(s, DefaultParams())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("want 2 trades, got %d", len(trades))
	}
	if trades[0].BuyID != 1 || trades[0].SellID != 3 {
		t.Fatalf("first trade: %+v", trades[0])
	}
	if trades[1].BuyID != 3 || trades[1].SellID != 4 {
		t.Fatalf("second trade: %+v", trades[1])
	}
	for i := 1; i < len(trades); i++ {
		if trades[i].BuyID < trades[i-1].SellID {
			t.Fatalf("overlapping trades: %+v", trades)
		}
	}
}

func TestRunZeroSellPriceIsDataIntegrityError(t *testing.T) {
	s := newSeries(t, []bar{
		{100, 101, 99, 100},
		{100, 200, 100, 100}, // entry: losscut 98, take profit 190
		{110, 150, 99, 100},  // arms the flag
		{0, 180, 110, 150},   // zero open on the exit bar
	})
	s.Rows[0].Signal = market.SignalBuy

	_, err := Run(s, DefaultParams())
	if err == nil {
		t.Fatalf("want data integrity error, got nil")
	}
	var die *market.DataIntegrityError
	if !errors.As(err, &die) {
		t.Fatalf("want DataIntegrityError, got %T: %v", err, err)
	}
	if die.BarID != 3 {
		t.Fatalf("want bar 3, got %d", die.BarID)
	}
}

func TestExhaustiveAnnotatesResolvedStarts(t *testing.T) {
	s := newSeries(t, []bar{
		{100, 200, 100, 150}, // losscut 98, take profit 95 from the open
		{150, 160, 149, 150}, // ratchet: losscut 147, take profit 152
		{150, 151, 150, 150}, // high 151 < 152 arms the flag
		{149, 149, 148, 149}, // flag exits at open
	})

	if err := Exhaustive(s, DefaultParams()); err != nil {
		t.Fatalf("exhaustive: %v", err)
	}

	first := s.Rows[0]
	if first.SellID == nil || *first.SellID != 3 {
		t.Fatalf("start bar 0 should exit on bar 3: %+v", first)
	}
	if *first.BuyPrice != 100 || *first.SellPrice != 149 {
		t.Fatalf("want 100 -> 149, got %v -> %v", *first.BuyPrice, *first.SellPrice)
	}
	if !approxEqual(*first.ProfitRate, 49.0/149.0, 1e-12) {
		t.Fatalf("profit rate mismatch: got %v", *first.ProfitRate)
	}

	// Later starts never resolve before the series ends.
	for i := 1; i < s.Len(); i++ {
		if s.Rows[i].SellID != nil {
			t.Fatalf("start bar %d should be unresolved", i)
		}
	}
}
