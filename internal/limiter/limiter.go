// Package limiter bounds the number of concurrently executing tasks.
//
// Callers beyond the limit wait in arrival order and are admitted first come,
// first served as running tasks finish. The limiter never inspects task
// results: a failing task gives its slot back exactly like a successful one.
package limiter

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Limiter caps the number of tasks running at once.
// The zero value is not usable; construct with New.
type Limiter struct {
	sem      *semaphore.Weighted
	max      int
	inFlight atomic.Int64
}

// New creates a limiter admitting at most maxConcurrent tasks.
func New(maxConcurrent int) (*Limiter, error) {
	if maxConcurrent <= 0 {
		return nil, fmt.Errorf("maxConcurrent must be > 0, got %d", maxConcurrent)
	}
	return &Limiter{
		sem: semaphore.NewWeighted(int64(maxConcurrent)),
		max: maxConcurrent,
	}, nil
}

// Do runs task once a slot is free.
//
// Waiters are admitted in the order they called Do. If ctx is done while
// waiting, Do returns ctx.Err() without running task. The task's own error is
// returned unchanged, and the slot is released when task returns or panics.
func (l *Limiter) Do(ctx context.Context, task func(context.Context) error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	l.inFlight.Add(1)
	defer func() {
		l.inFlight.Add(-1)
		l.sem.Release(1)
	}()

	return task(ctx)
}

// Run is Do for tasks that produce a value.
func Run[T any](ctx context.Context, l *Limiter, task func(context.Context) (T, error)) (T, error) {
	var result T
	err := l.Do(ctx, func(ctx context.Context) error {
		var taskErr error
		result, taskErr = task(ctx)
		return taskErr
	})
	return result, err
}

// Max returns the configured concurrency bound.
func (l *Limiter) Max() int {
	return l.max
}

// InFlight returns the number of tasks currently executing.
func (l *Limiter) InFlight() int {
	return int(l.inFlight.Load())
}
