package journal

import (
	"bytes"
	"encoding/csv"
	"os"
	"strconv"
)

// CSVJournal appends ledger rows and daily snapshots to two CSV files,
// flushing per record so a crashed run keeps everything written so far.
type CSVJournal struct {
	actions *csv.Writer
	daily   *csv.Writer
	af, df  *os.File
}

func NewCSV(actionsPath, dailyPath string) (*CSVJournal, error) {
	af, err := os.Create(actionsPath)
	if err != nil {
		return nil, err
	}
	df, err := os.Create(dailyPath)
	if err != nil {
		af.Close()
		return nil, err
	}

	aw := csv.NewWriter(af)
	dw := csv.NewWriter(df)

	if err := aw.Write([]string{"date", "ticker_symbol", "action", "price", "stocks", "profit", "profit_rate", "fee", "tax"}); err != nil {
		return nil, err
	}
	if err := dw.Write([]string{"date", "fund", "asset"}); err != nil {
		return nil, err
	}

	aw.Flush()
	if err := aw.Error(); err != nil {
		return nil, err
	}
	dw.Flush()
	if err := dw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{aw, dw, af, df}, nil
}

func (j *CSVJournal) RecordAction(a ActionRecord) error {
	err := j.actions.Write([]string{
		a.Date,
		a.TickerSymbol,
		a.Action,
		f(a.Price),
		strconv.FormatInt(a.Stocks, 10),
		fp(a.Profit),
		fp(a.ProfitRate),
		f(a.Fee),
		fp(a.Tax),
	})
	if err != nil {
		return err
	}

	j.actions.Flush()
	return j.actions.Error()
}

func (j *CSVJournal) RecordDaily(d DailyRecord) error {
	err := j.daily.Write([]string{
		d.Date,
		f(d.Fund),
		f(d.Asset),
	})
	if err != nil {
		return err
	}

	j.daily.Flush()
	return j.daily.Error()
}

func (j *CSVJournal) Close() error {
	j.actions.Flush()
	if err := j.actions.Error(); err != nil {
		return err
	}
	j.daily.Flush()
	if err := j.daily.Error(); err != nil {
		return err
	}

	if err := j.af.Close(); err != nil {
		return err
	}
	return j.df.Close()
}

// MarshalActions renders a ledger as CSV bytes for object storage puts.
func MarshalActions(actions []ActionRecord) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write([]string{"date", "ticker_symbol", "action", "price", "stocks", "profit", "profit_rate", "fee", "tax"}); err != nil {
		return nil, err
	}
	for _, a := range actions {
		err := cw.Write([]string{
			a.Date, a.TickerSymbol, a.Action,
			f(a.Price), strconv.FormatInt(a.Stocks, 10),
			fp(a.Profit), fp(a.ProfitRate), f(a.Fee), fp(a.Tax),
		})
		if err != nil {
			return nil, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalDaily renders the daily fund/asset series as CSV bytes.
func MarshalDaily(daily []DailyRecord) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write([]string{"date", "fund", "asset"}); err != nil {
		return nil, err
	}
	for _, d := range daily {
		if err := cw.Write([]string{d.Date, f(d.Fund), f(d.Asset)}); err != nil {
			return nil, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func fp(x *float64) string {
	if x == nil {
		return ""
	}
	return f(*x)
}
