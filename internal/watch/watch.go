// Package watch follows swatch results produced by other processes.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/swatches/pkg/swatch"
)

// DefaultPollInterval is how often PollForSwatches checks the store.
const DefaultPollInterval = 200 * time.Millisecond

// Getter reads a stored collection. Every swatch store satisfies it.
type Getter interface {
	Get(ctx context.Context, saturation, lightness int) (swatch.Collection, error)
}

// EventSource is a live feed of discovered colors. *swatch.Subscription
// satisfies it.
type EventSource interface {
	Events() <-chan *swatch.Event
	Errors() <-chan error
}

// PollForSwatches polls the store until a collection exists for
// (saturation, lightness). Returns the collection or an error if the timeout
// elapses first.
func PollForSwatches(ctx context.Context, store Getter, saturation, lightness int, interval, timeout time.Duration) (swatch.Collection, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	timeoutCh := time.After(timeout)

	for {
		c, err := store.Get(ctx, saturation, lightness)
		if err == nil {
			return c, nil
		}
		if !swatch.IsNotFound(err) {
			return nil, fmt.Errorf("failed to query for swatches: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeoutCh:
			return nil, fmt.Errorf("timeout waiting for swatches after %v", timeout)
		case <-ticker.C:
		}
	}
}

// Filter selects which events StreamEvents passes on. Nil fields match
// everything.
type Filter struct {
	Saturation *int
	Lightness  *int
}

func (f Filter) matches(e *swatch.Event) bool {
	if f.Saturation != nil && *f.Saturation != e.Saturation {
		return false
	}
	if f.Lightness != nil && *f.Lightness != e.Lightness {
		return false
	}
	return true
}

// StreamEvents calls fn for every matching event until ctx is done or the
// source closes. Subscription errors are passed to onError (which may be nil)
// and do not stop the stream. An error returned by fn stops it.
func StreamEvents(ctx context.Context, src EventSource, filter Filter, fn func(*swatch.Event) error, onError func(error)) error {
	events := src.Events()
	errs := src.Errors()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !filter.matches(event) {
				continue
			}
			if err := fn(event); err != nil {
				return err
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
