// Package risk holds the position sizing and cost arithmetic shared by the
// portfolio backtest.
package risk

import "math"

// Stocks sizes a buy at a fixed slice of the initial asset:
// floor(initialAsset * availableRate / buyPrice). Zero or negative prices
// size to zero shares.
func Stocks(initialAsset, availableRate, buyPrice float64) int64 {
	if buyPrice <= 0 {
		return 0
	}
	return int64(math.Floor(initialAsset * availableRate / buyPrice))
}

// Fee is the flat-rate commission on a fill.
func Fee(price float64, stocks int64, feeRate float64) float64 {
	return price * float64(stocks) * feeRate
}

// Tax applies only to positive realized profit.
func Tax(profit, taxRate float64) float64 {
	if profit > 0 {
		return profit * taxRate
	}
	return 0
}
