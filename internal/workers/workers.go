package workers

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Count returns the number of workers for a task with the given
// per-CPU multiplier, never less than one. A positive limit caps the result.
func Count(multiplier float64, limit int) int {
	// GOMAXPROCS follows the container CPU limit
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// Run calls fn for every index in [0, n) using at most size goroutines and
// returns the first error. Once a job fails, or ctx is done, jobs that have
// not started are skipped. The ctx passed to fn is cancelled on failure.
func Run(ctx context.Context, n, size int, fn func(ctx context.Context, i int) error) error {
	if size < 1 {
		size = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(size)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
