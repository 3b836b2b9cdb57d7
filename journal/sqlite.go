package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rkondo/trendsim/internal/id"
)

// SQLiteJournal stores ledger rows and daily snapshots in SQLite, tagged
// with a fresh run id so multiple backtests can share one database.
type SQLiteJournal struct {
	db    *sql.DB
	runID string
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db, runID: id.New()}, nil
}

// RunID identifies this journal's backtest run.
func (j *SQLiteJournal) RunID() string { return j.runID }

func (j *SQLiteJournal) RecordAction(a ActionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO actions
		(run_id, date, ticker_symbol, action, price, stocks, profit, profit_rate, fee, tax)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, a.Date, a.TickerSymbol, a.Action, a.Price, a.Stocks,
		nullable(a.Profit), nullable(a.ProfitRate), a.Fee, nullable(a.Tax),
	)
	return err
}

func (j *SQLiteJournal) RecordDaily(d DailyRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO daily_results
		(run_id, date, fund, asset)
		VALUES (?, ?, ?, ?)`,
		j.runID, d.Date, d.Fund, d.Asset,
	)
	return err
}

// ListActions returns this run's ledger in insertion order.
func (j *SQLiteJournal) ListActions() ([]ActionRecord, error) {
	rows, err := j.db.Query(`
		SELECT date, ticker_symbol, action, price, stocks, profit, profit_rate, fee, tax
		FROM actions WHERE run_id = ? ORDER BY rowid`, j.runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActionRecord
	for rows.Next() {
		var a ActionRecord
		var profit, profitRate, tax sql.NullFloat64
		if err := rows.Scan(&a.Date, &a.TickerSymbol, &a.Action, &a.Price, &a.Stocks,
			&profit, &profitRate, &a.Fee, &tax); err != nil {
			return nil, err
		}
		a.Profit = fromNull(profit)
		a.ProfitRate = fromNull(profitRate)
		a.Tax = fromNull(tax)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListDaily returns this run's fund/asset series in date order.
func (j *SQLiteJournal) ListDaily() ([]DailyRecord, error) {
	rows, err := j.db.Query(`
		SELECT date, fund, asset
		FROM daily_results WHERE run_id = ? ORDER BY date`, j.runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyRecord
	for rows.Next() {
		var d DailyRecord
		if err := rows.Scan(&d.Date, &d.Fund, &d.Asset); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

func nullable(x *float64) interface{} {
	if x == nil {
		return nil
	}
	return *x
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	x := v.Float64
	return &x
}
