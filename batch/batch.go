// Package batch fans per-instrument jobs out over a worker pool. Jobs are
// independent; a failure is captured into its result and never aborts the
// batch. Completion order is nondeterministic, so results are resorted by
// ticker symbol before the caller persists anything.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
)

// Job processes a single instrument.
type Job func(ctx context.Context, tickerSymbol string) error

// Result is the per-instrument outcome; Err is nil on success.
type Result struct {
	TickerSymbol string
	Err          error
}

// Run executes job for every ticker symbol on workers goroutines
// (NumCPU when workers <= 0) and returns one result per input, sorted by
// ticker symbol. Panics inside a job are captured as that instrument's
// failure.
func Run(ctx context.Context, tickerSymbols []string, workers int, job Job) []Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(tickerSymbols) {
		workers = len(tickerSymbols)
	}

	jobs := make(chan string)
	results := make(chan Result)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				results <- Result{TickerSymbol: symbol, Err: run(ctx, symbol, job)}
			}
		}()
	}

	go func() {
		for _, symbol := range tickerSymbols {
			jobs <- symbol
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	out := make([]Result, 0, len(tickerSymbols))
	for r := range results {
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].TickerSymbol < out[j].TickerSymbol
	})
	return out
}

func run(ctx context.Context, symbol string, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job(ctx, symbol)
}

// Failed filters the failures out of a result set.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
