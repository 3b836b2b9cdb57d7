package market

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Header is the persisted column layout of a stock price series. Input files
// may carry only the leading price columns; the simulator appends the rest.
var Header = []string{
	"id", "date",
	"open_price", "high_price", "low_price", "close_price", "adjusted_close_price",
	"signal", "predict", "action",
	"buy_price", "sell_price", "profit", "profit_rate", "sell_id",
	"predict_target_value", "predict_target_label",
}

// ReadSeries parses a stock price CSV into a Series. Annotation columns are
// optional; empty cells stay nil.
func ReadSeries(tickerSymbol string, r io.Reader) (*Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read series %s: %w", tickerSymbol, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read series %s: empty file", tickerSymbol)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	for _, name := range Header[:7] {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("read series %s: missing column %q", tickerSymbol, name)
		}
	}

	s := &Series{TickerSymbol: tickerSymbol, Rows: make([]Row, 0, len(records)-1)}

	for n, rec := range records[1:] {
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}

		row := Row{}
		if row.ID, err = strconv.Atoi(get("id")); err != nil {
			return nil, fmt.Errorf("read series %s: line %d: bad id: %w", tickerSymbol, n+2, err)
		}
		row.Date = get("date")

		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{"open_price", &row.Open},
			{"high_price", &row.High},
			{"low_price", &row.Low},
			{"close_price", &row.Close},
			{"adjusted_close_price", &row.AdjustedClose},
		} {
			if *f.dst, err = strconv.ParseFloat(get(f.name), 64); err != nil {
				return nil, fmt.Errorf("read series %s: line %d: bad %s: %w", tickerSymbol, n+2, f.name, err)
			}
		}

		row.Signal = Signal(get("signal"))
		row.Action = get("action")
		row.Predict = parseIntCell(get("predict"))
		row.BuyPrice = parseFloatCell(get("buy_price"))
		row.SellPrice = parseFloatCell(get("sell_price"))
		row.Profit = parseFloatCell(get("profit"))
		row.ProfitRate = parseFloatCell(get("profit_rate"))
		row.SellID = parseIntCell(get("sell_id"))
		row.PredictTargetValue = parseFloatCell(get("predict_target_value"))
		row.PredictTargetLabel = parseIntCell(get("predict_target_label"))

		s.Rows = append(s.Rows, row)
	}

	return s, nil
}

// WriteSeries renders the full persisted form, annotation columns included.
func WriteSeries(w io.Writer, s *Series) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}

	for i := range s.Rows {
		r := &s.Rows[i]
		rec := []string{
			strconv.Itoa(r.ID),
			r.Date,
			fc(r.Open), fc(r.High), fc(r.Low), fc(r.Close), fc(r.AdjustedClose),
			string(r.Signal),
			intCell(r.Predict),
			r.Action,
			floatCell(r.BuyPrice), floatCell(r.SellPrice),
			floatCell(r.Profit), floatCell(r.ProfitRate),
			intCell(r.SellID),
			floatCell(r.PredictTargetValue),
			intCell(r.PredictTargetLabel),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// MarshalSeries is WriteSeries into a byte slice, for object storage puts.
func MarshalSeries(s *Series) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSeries(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadTickerSymbols parses a companies CSV and returns the leading
// ticker_symbol column.
func ReadTickerSymbols(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ticker symbols: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read ticker symbols: empty file")
	}

	symbols := make([]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) == 0 || rec[0] == "" {
			continue
		}
		symbols = append(symbols, rec[0])
	}
	return symbols, nil
}

func parseFloatCell(cell string) *float64 {
	if cell == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseIntCell(cell string) *int {
	if cell == "" {
		return nil
	}
	// Tolerate floats in integer columns; some exports write 3.0 for bar ids.
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil
	}
	i := int(v)
	return &i
}

func fc(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return fc(*v)
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
