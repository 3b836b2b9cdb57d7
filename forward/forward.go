// Package forward gates simulated trades by an out-of-sample classifier,
// producing the series the portfolio backtest consumes.
package forward

import (
	"context"
	"fmt"

	"github.com/rkondo/trendsim/features"
	"github.com/rkondo/trendsim/market"
)

// Predictor is the trained binary classifier. Predictions align 1:1 by row
// order with the input feature rows.
type Predictor interface {
	Predict(ctx context.Context, tickerSymbol string, rows [][]float64) ([]int, error)
}

// Variant selects the gating rule.
type Variant string

const (
	// VariantPlain trades bar i when prediction(i-1) == 1.
	VariantPlain Variant = "plain"
	// VariantSignal additionally requires a buy signal on bar i-1.
	VariantSignal Variant = "signal"
)

// Test scores the feature rows, writes the predict column onto the series,
// and applies the gate: eligible bars are marked action=trade, every other
// bar has its simulated trade outcome cleared — even bars where no trade was
// scheduled. The tester suppresses rejected trades; it never invents new
// ones.
func Test(ctx context.Context, s *market.Series, feats []features.Row, pred Predictor, v Variant) error {
	rows := make([][]float64, len(feats))
	for i := range feats {
		rows[i] = feats[i].Values
	}

	predictions, err := pred.Predict(ctx, s.TickerSymbol, rows)
	if err != nil {
		return fmt.Errorf("forward test %s: %w", s.TickerSymbol, err)
	}
	if len(predictions) != len(feats) {
		return fmt.Errorf("forward test %s: got %d predictions for %d feature rows",
			s.TickerSymbol, len(predictions), len(feats))
	}

	byID := make(map[int]int, s.Len())
	for i := range s.Rows {
		byID[s.Rows[i].ID] = i
		s.Rows[i].Action = ""
	}

	for i := range feats {
		idx, ok := byID[feats[i].BarID]
		if !ok {
			return fmt.Errorf("forward test %s: feature row for unknown bar %d",
				s.TickerSymbol, feats[i].BarID)
		}
		p := predictions[i]
		s.Rows[idx].Predict = &p
	}

	for i := 1; i < s.Len(); i++ {
		prev := &s.Rows[i-1]

		eligible := prev.Predict != nil && *prev.Predict == 1
		if v == VariantSignal {
			eligible = eligible && prev.Signal == market.SignalBuy
		}

		if eligible {
			s.Rows[i].Action = "trade"
		} else {
			s.Rows[i].ClearTrade()
		}
	}

	return nil
}
