package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewLocal(t.TempDir())
	ctx := context.Background()

	key := SeriesKey("simulate", "1301")
	body := []byte("id,date\n0,2018-01-04\n")

	assert.NoError(t, s.Put(ctx, key, body))

	got, err := s.Get(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestLocalStoreMissingKey(t *testing.T) {
	t.Parallel()

	s := NewLocal(t.TempDir())
	_, err := s.Get(context.Background(), ReportKey("simulate"))
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "preprocess/stock_prices.1301.csv", SeriesKey("preprocess", "1301"))
	assert.Equal(t, "preprocess/companies.csv", CompaniesKey("preprocess"))
	assert.Equal(t, "forward_test/report.csv", ReportKey("forward_test"))
	assert.Equal(t, "predict/model.1301.csv", ModelKey("predict", "1301"))
	assert.Equal(t, "forward_test/test_all.action.csv", ActionKey("forward_test"))
	assert.Equal(t, "forward_test/test_all.result.csv", ResultKey("forward_test"))
}
