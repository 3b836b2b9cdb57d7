package market

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadSeriesMinimalColumns(t *testing.T) {
	t.Parallel()

	body := `id,date,open_price,high_price,low_price,close_price,adjusted_close_price
0,2018-01-04,100,105,99,102,102
1,2018-01-05,102,110,101,108,108
`
	s, err := ReadSeries("1301", strings.NewReader(body))
	assert.NoError(t, err)
	assert.Equal(t, "1301", s.TickerSymbol)
	assert.Equal(t, 2, s.Len())

	r := s.Rows[1]
	assert.Equal(t, 1, r.ID)
	assert.Equal(t, "2018-01-05", r.Date)
	assert.Equal(t, 108.0, r.AdjustedClose)
	assert.Equal(t, SignalNone, r.Signal)
	assert.Nil(t, r.SellID)
	assert.Nil(t, r.ProfitRate)
}

func TestReadSeriesToleratesFloatIntegers(t *testing.T) {
	t.Parallel()

	body := `id,date,open_price,high_price,low_price,close_price,adjusted_close_price,sell_id,predict
0,2018-01-04,100,105,99,102,102,3.0,1.0
`
	s, err := ReadSeries("1301", strings.NewReader(body))
	assert.NoError(t, err)
	assert.Equal(t, 3, *s.Rows[0].SellID)
	assert.Equal(t, 1, *s.Rows[0].Predict)
}

func TestReadSeriesMissingColumn(t *testing.T) {
	t.Parallel()

	body := "id,date,open_price\n0,2018-01-04,100\n"
	_, err := ReadSeries("1301", strings.NewReader(body))
	assert.Error(t, err)
}

func TestSeriesRoundTrip(t *testing.T) {
	t.Parallel()

	sellID, predict, label := 2, 1, 1
	buy, sell, profit, rate, target := 100.0, 110.0, 10.0, 10.0/110.0, 0.05
	in := &Series{TickerSymbol: "1301", Rows: []Row{
		{
			Bar:    Bar{ID: 0, Date: "2018-01-04", Open: 100, High: 105, Low: 99, Close: 102, AdjustedClose: 102},
			Signal: SignalBuy,
		},
		{
			Bar:                Bar{ID: 1, Date: "2018-01-05", Open: 100, High: 111, Low: 98, Close: 109, AdjustedClose: 109},
			Predict:            &predict,
			Action:             "trade",
			BuyPrice:           &buy,
			SellPrice:          &sell,
			Profit:             &profit,
			ProfitRate:         &rate,
			SellID:             &sellID,
			PredictTargetValue: &target,
			PredictTargetLabel: &label,
		},
	}}

	body, err := MarshalSeries(in)
	assert.NoError(t, err)

	out, err := ReadSeries("1301", bytes.NewReader(body))
	assert.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadTickerSymbols(t *testing.T) {
	t.Parallel()

	body := "ticker_symbol,name\n1301,Kyokuyo\n1305,Daiwa ETF\n,blank row\n"
	symbols, err := ReadTickerSymbols(strings.NewReader(body))
	assert.NoError(t, err)
	assert.Equal(t, []string{"1301", "1305"}, symbols)
}
