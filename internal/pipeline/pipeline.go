// Package pipeline drives the coarse-grained data parallelism spec §5
// describes: a pool of workers independently resolving Superloci, fed
// and drained through ordered channels. Grounded on the teacher's
// internal/annotate/parallel.go (WorkItem/WorkResult/ParallelAnnotate/
// OrderedCollect), generalized from per-variant annotation work to
// per-Superlocus resolution, and extended with a context.Context so
// cancellation is cooperative at the Superlocus boundary (spec §5: "no
// partial Superlocus result is ever emitted").
package pipeline

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/mikado-go/mikado/internal/locus"
	"github.com/mikado-go/mikado/internal/scoring"
)

// WorkItem holds one Superlocus ready for resolution.
type WorkItem struct {
	Seq        int
	Superlocus *locus.Superlocus
}

// WorkResult holds the outcome of resolving a single Superlocus. When
// Skipped is true, ctx was cancelled before this item's Superlocus.Run
// ever started; Result is the zero value and must not be treated as a
// (partial) resolution. Run always emits exactly one WorkResult per
// WorkItem it receives, skipped or not, so OrderedCollect never stalls
// waiting on a sequence number that will never arrive.
type WorkResult struct {
	Seq     int
	Result  locus.Result
	Skipped bool
}

// Run drives items through workers concurrent Superlocus.Run calls,
// respecting spec §5's model: workers share no mutable locus state
// (each goroutine owns exactly the Superlocus it was handed), config is
// read-only once validated so it's safe to share across workers, and
// ctx cancellation stops starting new Superlocus.Run calls — any
// Superlocus already in flight still runs to completion and is still
// emitted, since a half-resolved Superlocus must never be. A cancelled
// item is still emitted as a WorkResult with Skipped set, rather than
// dropped, so every Seq sent in is accounted for on the results
// channel and a caller collecting in sequence order never stalls on a
// gap.
//
// If workers is 0, runtime.NumCPU() is used. Results arrive on the
// returned channel in arrival order, not sequence order; use
// OrderedCollect to restore sequence order.
func Run(ctx context.Context, items <-chan WorkItem, cfg scoring.Config, opts locus.Options, workers int, log *zap.SugaredLogger) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				select {
				case <-ctx.Done():
					log.Debugw("superlocus skipped, context cancelled", "seq", item.Seq)
					results <- WorkResult{Seq: item.Seq, Skipped: true}
					continue
				default:
				}
				itemOpts := opts
				itemOpts.Logger = log
				res := item.Superlocus.Run(cfg, itemOpts)
				results <- WorkResult{Seq: item.Seq, Result: res}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order,
// buffering out-of-order arrivals in a pending map. Blocks until the
// results channel is closed. fn is called for skipped results too
// (WorkResult.Skipped); it must check that flag before treating
// Result as a real resolution.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
