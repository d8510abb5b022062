// Package batch sorts many independent record sets at once on a bounded
// worker pool.
package batch

import (
	"context"
	"fmt"

	"github.com/alitto/pond/v2"
	"github.com/amp-labs/duesort/envutil"
	"github.com/amp-labs/duesort/keysort"
	"github.com/amp-labs/duesort/logger"
	"go.uber.org/atomic"
)

const (
	// EnvWorkers overrides the default worker count.
	EnvWorkers = "DUESORT_BATCH_WORKERS"

	defaultWorkerCount = 4
)

// Sorter is the part of *keysort.Sorter that SortAll needs.
type Sorter[R any] interface {
	Sort(ctx context.Context, records []R) ([]R, error)
}

var _ Sorter[keysort.Record] = (*keysort.Sorter[keysort.Record])(nil)

type options struct {
	workers    int
	onProgress func(done, total int)
}

// Option configures SortAll.
type Option func(*options)

// WithWorkers caps the number of sets sorted at the same time.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithProgress is called after each set finishes. It may be called from
// several goroutines at once.
func WithProgress(f func(done, total int)) Option {
	return func(o *options) {
		o.onProgress = f
	}
}

// Workers returns the worker count from DUESORT_BATCH_WORKERS, or the default.
func Workers(ctx context.Context) int {
	return envutil.Int[int](ctx, EnvWorkers,
		envutil.Default(defaultWorkerCount),
		envutil.Validate(func(n int) error {
			if n <= 0 {
				return fmt.Errorf("%w: must be positive, got %d", envutil.ErrNotAllowed, n)
			}

			return nil
		})).ValueOrElse(defaultWorkerCount)
}

// SortAll sorts every set independently. out[i] is the sorted form of
// sets[i]. On failure no partial result is returned; the error names the
// index of the failing set. Canceling ctx stops sets that have not started.
func SortAll[R any](ctx context.Context, sorter Sorter[R], sets [][]R, opts ...Option) ([][]R, error) {
	o := options{workers: Workers(ctx)}

	for _, opt := range opts {
		opt(&o)
	}

	out := make([][]R, len(sets))
	if len(sets) == 0 {
		return out, nil
	}

	workers := min(o.workers, len(sets))

	pool := pond.NewPool(workers, pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroup()

	var done atomic.Int64

	log := logger.Get(ctx)

	for i, set := range sets {
		group.SubmitErr(func() error {
			sorted, err := sorter.Sort(ctx, set)
			if err != nil {
				return fmt.Errorf("set %d: %w", i, err)
			}

			out[i] = sorted

			n := int(done.Inc())
			if o.onProgress != nil {
				o.onProgress(n, len(sets))
			}

			log.Debug("sorted set", "set", i, "records", len(sorted), "done", n, "total", len(sets))

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
