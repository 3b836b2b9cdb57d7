// Package features builds the lagged, minmax-scaled input rows the trained
// classifier consumes. Image encoding of the same windows happens outside
// this repository.
package features

import (
	"gonum.org/v1/gonum/floats"

	"github.com/rkondo/trendsim/market"
)

// DefaultPeriod is the lag window length per price column.
const DefaultPeriod = 20

// Row is one feature vector, keyed by the bar it describes so the forward
// tester can align predictions back onto the series.
type Row struct {
	BarID  int
	Values []float64
}

// Build returns one feature row per bar that has a full lag window: for each
// of the five price columns, the last period values, minmax-scaled per
// column over the whole series. Leading bars without enough history are
// dropped, which is the NaN-drop the classifier was trained with.
func Build(s *market.Series, period int) []Row {
	if period <= 0 {
		period = DefaultPeriod
	}
	if s.Len() < period {
		return nil
	}

	columns := [][]float64{
		column(s, func(b *market.Bar) float64 { return b.Open }),
		column(s, func(b *market.Bar) float64 { return b.High }),
		column(s, func(b *market.Bar) float64 { return b.Low }),
		column(s, func(b *market.Bar) float64 { return b.Close }),
		column(s, func(b *market.Bar) float64 { return b.AdjustedClose }),
	}
	for _, c := range columns {
		scale(c)
	}

	rows := make([]Row, 0, s.Len()-period+1)
	for i := period - 1; i < s.Len(); i++ {
		values := make([]float64, 0, len(columns)*period)
		for _, c := range columns {
			for lag := 0; lag < period; lag++ {
				values = append(values, c[i-lag])
			}
		}
		rows = append(rows, Row{BarID: s.Rows[i].ID, Values: values})
	}

	return rows
}

func column(s *market.Series, get func(*market.Bar) float64) []float64 {
	c := make([]float64, s.Len())
	for i := range s.Rows {
		c[i] = get(&s.Rows[i].Bar)
	}
	return c
}

// scale maps the column onto [0,1] in place. A constant column collapses
// to zero rather than dividing by zero.
func scale(c []float64) {
	if len(c) == 0 {
		return
	}
	min, max := floats.Min(c), floats.Max(c)
	span := max - min
	for i := range c {
		if span == 0 {
			c[i] = 0
			continue
		}
		c[i] = (c[i] - min) / span
	}
}
