// Package storage reads and writes run artifacts as whole objects, keyed the
// same way on S3-compatible object storage and on the local filesystem.
package storage

import (
	"context"
	"fmt"
)

// Store is a flat key/value blob store. Reads and writes are synchronous and
// unretried; callers treat a failure as the instrument's failure.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte) error
}

// Artifact keys under a run prefix.

func SeriesKey(prefix, tickerSymbol string) string {
	return fmt.Sprintf("%s/stock_prices.%s.csv", prefix, tickerSymbol)
}

func CompaniesKey(prefix string) string {
	return prefix + "/companies.csv"
}

func ReportKey(prefix string) string {
	return prefix + "/report.csv"
}

func ModelKey(prefix, tickerSymbol string) string {
	return fmt.Sprintf("%s/model.%s.csv", prefix, tickerSymbol)
}

func ActionKey(prefix string) string {
	return prefix + "/test_all.action.csv"
}

func ResultKey(prefix string) string {
	return prefix + "/test_all.result.csv"
}
