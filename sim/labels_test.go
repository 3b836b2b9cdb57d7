package sim

import "testing"

func TestApplyLabels(t *testing.T) {
	s := newSeries(t, []bar{
		{100, 100, 100, 100},
		{100, 100, 100, 100},
		{100, 100, 100, 100},
		{100, 100, 100, 100},
	})
	hit := 0.03
	miss := 0.0299999
	s.Rows[1].ProfitRate = &hit
	s.Rows[2].ProfitRate = &miss

	ApplyLabels(s, 0.03)

	// Row 0 looks at row 1's trade: exactly the threshold counts.
	if got := s.Rows[0]; got.PredictTargetLabel == nil || *got.PredictTargetLabel != 1 {
		t.Fatalf("row 0: want label 1, got %+v", got.PredictTargetLabel)
	}
	if got := s.Rows[0]; got.PredictTargetValue == nil || *got.PredictTargetValue != hit {
		t.Fatalf("row 0: want value %v", hit)
	}

	// Row 1 looks at row 2's trade: just under the threshold.
	if got := s.Rows[1]; *got.PredictTargetLabel != 0 {
		t.Fatalf("row 1: want label 0, got %d", *got.PredictTargetLabel)
	}
	if got := s.Rows[1]; got.PredictTargetValue == nil || *got.PredictTargetValue != miss {
		t.Fatalf("row 1: want value %v", miss)
	}

	// Row 2's next bar opened no trade, row 3 is the final row.
	for _, i := range []int{2, 3} {
		got := s.Rows[i]
		if got.PredictTargetLabel == nil || *got.PredictTargetLabel != 0 {
			t.Fatalf("row %d: want label 0", i)
		}
		if got.PredictTargetValue != nil {
			t.Fatalf("row %d: want no value, got %v", i, *got.PredictTargetValue)
		}
	}
}
