package forward

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// LinearPredictor scores feature rows with a stored linear decision
// function: label 1 when bias + w·x >= 0. It stands in for the externally
// trained classifier at the same interface.
type LinearPredictor struct {
	Bias    float64
	Weights []float64
}

// Predict implements Predictor.
func (p *LinearPredictor) Predict(_ context.Context, tickerSymbol string, rows [][]float64) ([]int, error) {
	out := make([]int, len(rows))
	for i, row := range rows {
		if len(row) != len(p.Weights) {
			return nil, fmt.Errorf("predict %s: row %d has %d features, model has %d weights",
				tickerSymbol, i, len(row), len(p.Weights))
		}
		if p.Bias+floats.Dot(p.Weights, row) >= 0 {
			out[i] = 1
		}
	}
	return out, nil
}

// ReadLinearModel parses stored model coefficients: a name,value CSV whose
// first data row is the bias, followed by one weight per feature in order.
func ReadLinearModel(r io.Reader) (*LinearPredictor, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("read model: no coefficients")
	}

	p := &LinearPredictor{}
	for n, rec := range records[1:] {
		if len(rec) < 2 {
			return nil, fmt.Errorf("read model: line %d: want name,value", n+2)
		}
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("read model: line %d: %w", n+2, err)
		}
		if rec[0] == "bias" {
			p.Bias = v
			continue
		}
		p.Weights = append(p.Weights, v)
	}
	return p, nil
}
