// Package resource provides the explicit parallelism context threaded through
// graph construction and the parallel algorithms. A Controller is plain
// configuration, never process-global state: two graphs built with different
// controllers run their worker pools independently.
package resource

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Options holds resource limits.
type Options struct {
	// MaxWorkers is the maximum number of concurrent workers a parallel
	// phase may run. If 0, defaults to GOMAXPROCS.
	MaxWorkers int

	// IOLimitBytesPerSec is the maximum snapshot I/O throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller bounds worker concurrency and snapshot I/O throughput.
type Controller struct {
	maxWorkers int
	workerSem  *semaphore.Weighted
	ioLimiter  *rate.Limiter
	ioBurst    int
}

// NewController creates a new resource controller.
func NewController(optFns ...func(o *Options)) *Controller {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.GOMAXPROCS(0)
	}

	c := &Controller{
		maxWorkers: opts.MaxWorkers,
		workerSem:  semaphore.NewWeighted(int64(opts.MaxWorkers)),
	}

	if opts.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(opts.IOLimitBytesPerSec), int(opts.IOLimitBytesPerSec))
		c.ioBurst = int(opts.IOLimitBytesPerSec)
	}

	return c
}

// Workers returns the configured worker bound.
func (c *Controller) Workers() int {
	return c.maxWorkers
}

// AcquireWorker reserves a worker slot, blocking until one is free or ctx is
// canceled.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	return c.workerSem.Acquire(ctx, 1)
}

// TryAcquireWorker reserves a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	return c.workerSem.TryAcquire(1)
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	c.workerSem.Release(1)
}

// AcquireIO waits until the I/O limit allows the specified number of bytes.
// Requests larger than the burst are split internally.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	for bytes > 0 {
		n := bytes
		if n > c.ioBurst {
			n = c.ioBurst
		}
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

