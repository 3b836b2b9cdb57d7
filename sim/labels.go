package sim

import "github.com/rkondo/trendsim/market"

// ApplyLabels derives the training target on every row: the value is the
// profit rate of the trade entered at the next bar, the label is 1 when that
// value reaches minimumProfitRate. Rows whose next bar opened no trade (and
// the final row) get label 0 with no value.
func ApplyLabels(s *market.Series, minimumProfitRate float64) {
	for i := range s.Rows {
		row := &s.Rows[i]

		label := 0
		if i+1 < s.Len() {
			if next := s.Rows[i+1].ProfitRate; next != nil {
				v := *next
				row.PredictTargetValue = &v
				if v >= minimumProfitRate {
					label = 1
				}
			}
		}
		l := label
		row.PredictTargetLabel = &l
	}
}
