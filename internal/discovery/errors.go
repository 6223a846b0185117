package discovery

import (
	"context"
	"errors"
	"fmt"
)

// ErrCanceled is returned when a discovery run is aborted by its caller or by
// a superseding request. It is kept distinct from oracle failures so callers
// can stay silent about it.
var ErrCanceled = errors.New("discovery canceled")

// canceled wraps the context error that triggered an abort.
func canceled(cause error) error {
	if cause == nil {
		return ErrCanceled
	}
	return fmt.Errorf("%w: %w", ErrCanceled, cause)
}

// IsCanceled reports whether err represents an aborted run rather than a
// failure. Bare context errors count as cancellation too.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
