// Package signals derives buy/sell markers from moving-average crossovers.
package signals

import (
	"fmt"

	"github.com/markcheno/go-talib"

	"github.com/rkondo/trendsim/market"
)

// Params holds the short/long SMA window pair.
type Params struct {
	Short int
	Long  int
}

// DefaultParams is the 5/10 daily window pair.
func DefaultParams() Params {
	return Params{Short: 5, Long: 10}
}

// Apply computes both SMAs over adjusted close and records a signal on every
// crossover bar: buy when the short average crosses up through the long one,
// sell on the way down. Bars before both averages are defined get no signal.
func Apply(s *market.Series, p Params) error {
	if p.Short <= 0 || p.Long <= 0 || p.Short >= p.Long {
		return fmt.Errorf("signals: invalid window pair %d/%d", p.Short, p.Long)
	}
	if s.Len() < p.Long+1 {
		return nil
	}

	prices := make([]float64, s.Len())
	for i := range s.Rows {
		prices[i] = s.Rows[i].AdjustedClose
	}

	short := talib.Sma(prices, p.Short)
	long := talib.Sma(prices, p.Long)

	// talib leaves the warm-up prefix zeroed; the first bar with both
	// averages defined at i and i-1 is p.Long.
	for i := p.Long; i < s.Len(); i++ {
		switch {
		case short[i-1] < long[i-1] && short[i] >= long[i]:
			s.Rows[i].Signal = market.SignalBuy
		case short[i-1] > long[i-1] && short[i] <= long[i]:
			s.Rows[i].Signal = market.SignalSell
		}
	}

	return nil
}
