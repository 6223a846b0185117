// Package oracle names colors.
//
// An Oracle maps an HSL point to a human-readable color name plus hex and RGB
// values. HTTPClient asks thecolorapi.com; Palette answers locally from a fixed
// list of named colors and is used for offline runs and tests.
package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/swatches/pkg/swatch"
)

// Oracle looks up the named color at one HSL point.
// Implementations must be safe for concurrent use.
type Oracle interface {
	Lookup(ctx context.Context, hue, saturation, lightness int) (swatch.ColorPoint, error)
}

// Func adapts an ordinary function to the Oracle interface.
type Func func(ctx context.Context, hue, saturation, lightness int) (swatch.ColorPoint, error)

// Lookup calls f.
func (f Func) Lookup(ctx context.Context, hue, saturation, lightness int) (swatch.ColorPoint, error) {
	return f(ctx, hue, saturation, lightness)
}

// Error reports a failed remote lookup: a transport failure, a non-success
// status or a payload that could not be decoded.
type Error struct {
	Hue        int
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("color api error at hue %d: status %d: %v", e.Hue, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("color api error at hue %d: %v", e.Hue, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsError reports whether err is (or wraps) an oracle *Error.
func IsError(err error) bool {
	var oe *Error
	return errors.As(err, &oe)
}
