package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var header = []string{
	"ticker_symbol", "trade_count", "win_count", "lose_count", "win_rate",
	"profit_average", "loss_average", "profit_factor", "expected_value",
}

// Write renders records as the report CSV.
func Write(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			r.TickerSymbol,
			strconv.Itoa(r.TradeCount),
			strconv.Itoa(r.WinCount),
			strconv.Itoa(r.LoseCount),
			f(r.WinRate),
			f(r.ProfitAverage),
			f(r.LossAverage),
			f(r.ProfitFactor),
			f(r.ExpectedValue),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Marshal is Write into a byte slice, for object storage puts.
func Marshal(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read parses a report CSV. Only ticker_symbol, profit_factor and
// expected_value are required; the backtest ranks on those alone.
func Read(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read report: empty file")
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	for _, name := range []string{"ticker_symbol", "profit_factor", "expected_value"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("read report: missing column %q", name)
		}
	}

	records := make([]Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		rec := Record{TickerSymbol: get("ticker_symbol")}
		if rec.ProfitFactor, err = strconv.ParseFloat(get("profit_factor"), 64); err != nil {
			return nil, fmt.Errorf("read report: line %d: bad profit_factor: %w", n+2, err)
		}
		if rec.ExpectedValue, err = strconv.ParseFloat(get("expected_value"), 64); err != nil {
			return nil, fmt.Errorf("read report: line %d: bad expected_value: %w", n+2, err)
		}
		rec.TradeCount, _ = strconv.Atoi(get("trade_count"))
		rec.WinCount, _ = strconv.Atoi(get("win_count"))
		rec.LoseCount, _ = strconv.Atoi(get("lose_count"))
		rec.WinRate, _ = strconv.ParseFloat(get("win_rate"), 64)
		rec.ProfitAverage, _ = strconv.ParseFloat(get("profit_average"), 64)
		rec.LossAverage, _ = strconv.ParseFloat(get("loss_average"), 64)

		records = append(records, rec)
	}

	return records, nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
