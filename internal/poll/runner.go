// Package poll runs ingestion: every connector is fetched and its listings
// processed independently, so one failing provider never blocks another.
package poll

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/ingest"
	"jobboard-engine/internal/scrape/types"
)

const (
	defaultFetchTimeout   = 30 * time.Second
	defaultProcessTimeout = 2 * time.Minute
)

type Runner struct {
	Fetchers       []types.Fetcher
	Processor      *ingest.Processor
	FetchTimeout   time.Duration
	ProcessTimeout time.Duration
	Concurrent     bool
}

type SourceSummary struct {
	Source string `json:"source"`
	ingest.Counts
	DurationMs int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

type Summary struct {
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
	Totals     ingest.Counts   `json:"totals"`
	Sources    []SourceSummary `json:"sources"`
}

// RunOnce fetches and processes every connector. It always returns a
// summary; per-source problems are recorded in it, never returned.
func (r *Runner) RunOnce(ctx context.Context) Summary {
	sum := Summary{
		StartedAt: time.Now().UTC(),
		Sources:   make([]SourceSummary, len(r.Fetchers)),
	}
	log.Printf("[poll] run=start sources=%d concurrent=%v", len(r.Fetchers), r.Concurrent)

	if r.Concurrent {
		var g errgroup.Group
		for i, f := range r.Fetchers {
			g.Go(func() error {
				sum.Sources[i] = r.runSource(ctx, f)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, f := range r.Fetchers {
			sum.Sources[i] = r.runSource(ctx, f)
		}
	}

	for _, s := range sum.Sources {
		sum.Totals.Add(s.Counts)
	}
	sum.FinishedAt = time.Now().UTC()

	t := sum.Totals
	log.Printf("[poll] run=end fetched=%d normalized=%d persisted=%d skipped=%d failed=%d dur=%s",
		t.Fetched, t.Normalized, t.Persisted, t.Skipped, t.Failed, sum.FinishedAt.Sub(sum.StartedAt).Round(time.Millisecond))
	return sum
}

func (r *Runner) runSource(ctx context.Context, f types.Fetcher) (out SourceSummary) {
	start := time.Now()
	out.Source = f.Name()
	defer func() {
		if rec := recover(); rec != nil {
			out.Error = fmt.Sprintf("panic: %v", rec)
			log.Printf("[poll] source=%s panic=%v\n%s", out.Source, rec, debug.Stack())
		}
		out.DurationMs = time.Since(start).Milliseconds()
	}()

	listings, err := r.fetch(ctx, f)
	if err != nil {
		out.Error = err.Error()
		log.Printf("[poll] level=error source=%s err=%v", out.Source, err)
	}

	pctx, cancel := context.WithTimeout(ctx, orDefault(r.ProcessTimeout, defaultProcessTimeout))
	defer cancel()
	out.Counts = r.Processor.Process(pctx, out.Source, listings)

	log.Printf("[poll] source=%s fetched=%d persisted=%d skipped=%d failed=%d dur=%s",
		out.Source, out.Fetched, out.Persisted, out.Skipped, out.Failed, time.Since(start).Round(time.Millisecond))
	return out
}

type fetchResult struct {
	listings []domain.RawListing
	panicked any
	stack    []byte
}

// fetch bounds a connector by the fetch deadline even when it ignores ctx.
// A connector still running at the deadline is abandoned and its late
// result dropped.
func (r *Runner) fetch(ctx context.Context, f types.Fetcher) ([]domain.RawListing, error) {
	fctx, cancel := context.WithTimeout(ctx, orDefault(r.FetchTimeout, defaultFetchTimeout))
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		var res fetchResult
		defer func() {
			if rec := recover(); rec != nil {
				res.panicked, res.stack = rec, debug.Stack()
			}
			done <- res
		}()
		res.listings = f.Fetch(fctx)
	}()

	select {
	case res := <-done:
		if res.panicked != nil {
			log.Printf("[poll] source=%s panic=%v\n%s", f.Name(), res.panicked, res.stack)
			return nil, fmt.Errorf("panic: %v", res.panicked)
		}
		return res.listings, nil
	case <-fctx.Done():
		return nil, fmt.Errorf("fetch abandoned: %w", fctx.Err())
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
