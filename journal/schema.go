// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS actions (
	run_id TEXT NOT NULL,
	date TEXT NOT NULL,
	ticker_symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	price REAL NOT NULL,
	stocks INTEGER NOT NULL,
	profit REAL,
	profit_rate REAL,
	fee REAL NOT NULL,
	tax REAL
);

CREATE TABLE IF NOT EXISTS daily_results (
	run_id TEXT NOT NULL,
	date TEXT NOT NULL,
	fund REAL NOT NULL,
	asset REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_actions_run ON actions(run_id, date);
CREATE INDEX IF NOT EXISTS idx_daily_run ON daily_results(run_id, date);
`
