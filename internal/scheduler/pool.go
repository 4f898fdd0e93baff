// Package scheduler runs independent jobs on a bounded pool of goroutines.
package scheduler

import (
	"context"
	"sync"
)

// JobResult is the outcome of one unit's job.
type JobResult struct {
	UnitID   string
	ExitCode int
	Skipped  bool // Nothing to do (resume found every output).
	Err      error
}

// Failed reports whether the job ended in error.
func (r JobResult) Failed() bool { return r.Err != nil }

// Run calls fn for every item with at most limit calls in flight and
// returns the results in input order once all calls have returned. A
// failing call never cancels its siblings, and nothing is retried. When
// ctx is cancelled, items not yet started still receive a call with the
// cancelled context so every slot gets a result.
func Run[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) R) []R {
	if limit < 1 {
		limit = 1
	}
	results := make([]R, len(items))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, item := range items {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = fn(ctx, item)
		}(i, item)
	}
	wg.Wait()
	return results
}

// Summary tallies job results.
type Summary struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// Summarize counts results by outcome.
func Summarize(results []JobResult) Summary {
	var s Summary
	for _, r := range results {
		switch {
		case r.Failed():
			s.Failed++
		case r.Skipped:
			s.Skipped++
		default:
			s.Succeeded++
		}
	}
	return s
}
