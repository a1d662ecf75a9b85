// Package parallel owns the worker pool used by the rendering subsystem and
// the host core-count query.
package parallel

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// NumSystemCores returns the number of logical CPUs usable by the process.
func NumSystemCores() int {
	return runtime.NumCPU()
}

// Pool bounds the number of goroutines working on a single job.
type Pool struct {
	workers int
	closed  atomic.Bool
}

// NewPool creates a pool of n workers. n <= 0 selects the detected core count.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = NumSystemCores()
	}
	return &Pool{workers: n}
}

// Workers returns the configured pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// For calls fn for every index in [0, count) with at most Workers() calls in
// flight. It returns the first error; remaining iterations observe a
// cancelled context.
func (p *Pool) For(ctx context.Context, count int, fn func(ctx context.Context, i int) error) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := 0; i < count; i++ {
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
	return g.Wait()
}

// Close marks the pool unusable. Jobs already running are not interrupted.
func (p *Pool) Close() {
	p.closed.Store(true)
}
