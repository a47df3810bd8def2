// Package batch runs I/O-bound work items in sequential, size-bounded batches.
//
// At most Size calls are in flight at once: a batch is fully joined before the
// next one starts. A failing item never cancels its siblings; its error is
// recorded in its Result and the caller decides what to substitute.
package batch

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Options configures a batched run.
type Options struct {
	// Size is the number of concurrent calls per batch. Values below 1 mean 1.
	Size int
	// Limiter, when set, paces every call (shared across batches and stages).
	Limiter *rate.Limiter
	// Name labels log events.
	Name string
}

// Result holds the outcome of one item. Index is the item's position in the
// input slice.
type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// Run applies fn to every item and returns one Result per item, in input order.
//
// The context is checked before each batch; once it is done, the remaining
// items are not started and carry the context error.
func Run[T, R any](ctx context.Context, items []T, opts Options, fn func(ctx context.Context, item T) (R, error)) []Result[R] {
	size := opts.Size
	if size < 1 {
		size = 1
	}

	results := make([]Result[R], len(items))
	for i := range results {
		results[i].Index = i
	}

	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))

		if err := ctx.Err(); err != nil {
			log.Warn().
				Err(err).
				Str("batch", opts.Name).
				Int("remaining", len(items)-start).
				Msg("Context done, skipping remaining batches")
			for i := start; i < len(items); i++ {
				results[i].Err = err
			}
			break
		}

		log.Debug().
			Str("batch", opts.Name).
			Int("from", start).
			Int("to", end).
			Int("total", len(items)).
			Msg("Starting batch")

		// Plain Group, not WithContext: one failure must not cancel siblings.
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				if opts.Limiter != nil {
					if err := opts.Limiter.Wait(ctx); err != nil {
						results[i].Err = err
						return nil
					}
				}
				v, err := fn(ctx, items[i])
				results[i].Value = v
				results[i].Err = err
				return nil
			})
		}
		_ = g.Wait()
	}

	return results
}
