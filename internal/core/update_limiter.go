package core

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyUpdates is returned when no update slot frees up within the
// limiter's wait time. Clients should retry after a short delay.
var ErrTooManyUpdates = errors.New("too many concurrent updates, try again later")

const (
	// DefaultMaxConcurrentUpdates is the default number of batches applied at once.
	DefaultMaxConcurrentUpdates = 4

	// DefaultUpdateWait is how long a batch waits for a slot before rejection.
	DefaultUpdateWait = 10 * time.Second
)

// UpdateLimiter bounds how many update batches hold a store transaction
// at the same time.
type UpdateLimiter struct {
	sem     *semaphore.Weighted
	max     int64
	maxWait time.Duration
	active  atomic.Int64
}

// NewUpdateLimiter allows at most maxConcurrent batches at once. Non-positive
// arguments fall back to the defaults.
func NewUpdateLimiter(maxConcurrent int, maxWait time.Duration) *UpdateLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentUpdates
	}
	if maxWait <= 0 {
		maxWait = DefaultUpdateWait
	}
	return &UpdateLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     int64(maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to the limiter's wait time. It returns
// ctx.Err() if the caller's context ends first and ErrTooManyUpdates if
// the wait time runs out. Every successful Acquire must be paired with Release.
func (l *UpdateLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyUpdates
	}
	l.active.Add(1)
	return nil
}

// Release returns a slot taken by Acquire.
func (l *UpdateLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// Active returns the number of slots in use.
func (l *UpdateLimiter) Active() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *UpdateLimiter) MaxConcurrent() int {
	return int(l.max)
}

// Drain blocks until no batch holds a slot. New batches queue behind it
// until it returns.
func (l *UpdateLimiter) Drain(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, l.max); err != nil {
		return err
	}
	l.sem.Release(l.max)
	return nil
}
