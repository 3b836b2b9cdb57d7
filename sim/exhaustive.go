package sim

import "github.com/rkondo/trendsim/market"

// Exhaustive opens a hypothetical position at every bar's open and scans
// forward with the same ratchet rules as Run, ignoring signals. It produces
// dense training data: each bar that resolves gets the full trade annotation
// on its own row. Thresholds seed from the entry bar's open price here, not
// close/high as in the signalled machine.
func Exhaustive(s *market.Series, p Params) error {
	for start := 0; start < s.Len(); start++ {
		startRow := &s.Rows[start]

		losscutPrice := startRow.Open * p.LosscutRate
		takeProfitPrice := startRow.Open * p.TakeProfitRate
		takeProfitFlag := false

		sellIdx := -1
		sellPrice := 0.0

	scan:
		for i := start + 1; i < s.Len(); i++ {
			row := &s.Rows[i]

			switch {
			case takeProfitFlag:
				sellIdx = i
				sellPrice = row.Open
				break scan

			case row.Low < losscutPrice:
				sellIdx = i
				sellPrice = row.Low
				break scan

			case row.High < takeProfitPrice:
				takeProfitFlag = true
			}

			if v := row.Close * p.LosscutRate; v > losscutPrice {
				losscutPrice = v
			}
			if v := row.High * p.TakeProfitRate; v > takeProfitPrice {
				takeProfitPrice = v
			}
		}

		if sellIdx < 0 {
			continue
		}
		if _, err := closeTrade(s, start, &s.Rows[sellIdx], sellPrice, ""); err != nil {
			return err
		}
	}

	return nil
}
