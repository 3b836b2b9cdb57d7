// Package report aggregates simulated trades per instrument into the
// ranking statistics the portfolio backtest selects its universe from.
package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/rkondo/trendsim/market"
)

// Record is one instrument's aggregate over a date window.
type Record struct {
	TickerSymbol  string
	TradeCount    int
	WinCount      int
	LoseCount     int
	WinRate       float64
	ProfitAverage float64
	LossAverage   float64
	ProfitFactor  float64
	ExpectedValue float64
}

// Generate aggregates the annotated entry rows of a series whose date falls
// in [start, end). Profit factor is the ratio of summed winning rates to
// summed losing rates; expected value is the mean profit rate per trade.
func Generate(s *market.Series, start, end string) Record {
	rec := Record{TickerSymbol: s.TickerSymbol}

	var all, wins, losses []float64
	for i := range s.Rows {
		row := &s.Rows[i]
		if row.ProfitRate == nil {
			continue
		}
		if row.Date < start || row.Date >= end {
			continue
		}

		r := *row.ProfitRate
		all = append(all, r)
		if r > 0 {
			wins = append(wins, r)
		} else {
			losses = append(losses, r)
		}
	}

	rec.TradeCount = len(all)
	rec.WinCount = len(wins)
	rec.LoseCount = len(losses)
	if rec.TradeCount == 0 {
		return rec
	}

	rec.WinRate = float64(rec.WinCount) / float64(rec.TradeCount)
	rec.ExpectedValue = stat.Mean(all, nil)

	var winSum, lossSum float64
	if len(wins) > 0 {
		rec.ProfitAverage = stat.Mean(wins, nil)
		winSum = floatsSum(wins)
	}
	if len(losses) > 0 {
		rec.LossAverage = stat.Mean(losses, nil)
		lossSum = floatsSum(losses)
	}

	switch {
	case lossSum != 0:
		rec.ProfitFactor = winSum / math.Abs(lossSum)
	case winSum > 0:
		rec.ProfitFactor = math.Inf(1)
	}

	return rec
}

// SelectUniverse filters records above the profit factor floor, ranks by
// expected value descending, and keeps the top k. An empty filter result
// falls back to the full ranked set, same k.
func SelectUniverse(records []Record, profitFactorFloor float64, k int) []string {
	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		if r.ProfitFactor > profitFactorFloor {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		filtered = append(filtered, records...)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ExpectedValue > filtered[j].ExpectedValue
	})

	if len(filtered) > k {
		filtered = filtered[:k]
	}

	symbols := make([]string, len(filtered))
	for i, r := range filtered {
		symbols[i] = r.TickerSymbol
	}
	return symbols
}

func floatsSum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}
