// Package resource bounds the memory held by live state vectors and the
// number of simulations running at once.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"qsim/internal/qerr"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes caps the total bytes of state vectors alive at once.
	// If 0, usage is only tracked.
	MemoryLimitBytes int64

	// MaxConcurrent is the maximum number of simulations running at once.
	// If 0, defaults to 1.
	MaxConcurrent int64
}

// Controller hands out memory and concurrency budget. A nil *Controller
// imposes no limits.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	runSem  *semaphore.Weighted
	running atomic.Int64
}

// NewController creates a controller for cfg.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	c := &Controller{
		cfg:    cfg,
		runSem: semaphore.NewWeighted(cfg.MaxConcurrent),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	return c
}

// Lease is budget held by one simulation. Release returns it exactly once.
type Lease struct {
	c     *Controller
	bytes int64
	done  atomic.Bool
}

// Release returns the lease's budget. Extra calls are no-ops.
func (l *Lease) Release() {
	if l == nil || l.c == nil || !l.done.CompareAndSwap(false, true) {
		return
	}
	l.c.releaseMemory(l.bytes)
	l.c.runSem.Release(1)
	l.c.running.Add(-1)
}

// Acquire reserves one run slot and bytes of memory, blocking until both
// are available or ctx ends. A request larger than the whole memory limit
// fails immediately with qerr.ErrResourceLimit instead of waiting forever.
func (c *Controller) Acquire(ctx context.Context, bytes int64) (*Lease, error) {
	if c == nil {
		return &Lease{}, nil
	}
	if c.memSem != nil && bytes > c.cfg.MemoryLimitBytes {
		return nil, &qerr.LimitError{Resource: "state vector bytes", Requested: bytes, Limit: c.cfg.MemoryLimitBytes}
	}
	if err := c.runSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	if err := c.acquireMemory(ctx, bytes); err != nil {
		c.runSem.Release(1)
		return nil, err
	}
	c.running.Add(1)
	return &Lease{c: c, bytes: bytes}, nil
}

// TryAcquire is Acquire without blocking. ok is false when either budget
// is exhausted.
func (c *Controller) TryAcquire(bytes int64) (lease *Lease, ok bool) {
	if c == nil {
		return &Lease{}, true
	}
	if !c.runSem.TryAcquire(1) {
		return nil, false
	}
	if c.memSem != nil && (bytes > c.cfg.MemoryLimitBytes || !c.memSem.TryAcquire(max(bytes, 0))) {
		c.runSem.Release(1)
		return nil, false
	}
	if bytes > 0 {
		c.memUsed.Add(bytes)
	}
	c.running.Add(1)
	return &Lease{c: c, bytes: bytes}, true
}

func (c *Controller) acquireMemory(ctx context.Context, bytes int64) error {
	if bytes <= 0 {
		return nil
	}
	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}
	c.memUsed.Add(bytes)
	return nil
}

func (c *Controller) releaseMemory(bytes int64) {
	if bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the bytes currently leased.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// Running returns the number of leases currently held.
func (c *Controller) Running() int64 {
	if c == nil {
		return 0
	}
	return c.running.Load()
}

// MaxConcurrent returns the configured run slot count.
func (c *Controller) MaxConcurrent() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MaxConcurrent
}
