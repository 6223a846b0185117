package discovery

import (
	"context"

	"github.com/dyluth/swatches/internal/limiter"
	"github.com/dyluth/swatches/internal/oracle"
	"github.com/dyluth/swatches/pkg/swatch"
)

// FetchAt looks up one hue through the limiter.
//
// A done ctx fails fast with ErrCanceled before a slot is requested, and again
// after the slot is granted, so no lookup starts once the run is cancelled.
// Any failure observed while ctx is done is reported as ErrCanceled instead of
// the underlying oracle error.
func FetchAt(ctx context.Context, o oracle.Oracle, lim *limiter.Limiter, hue, saturation, lightness int) (swatch.ColorPoint, error) {
	if err := ctx.Err(); err != nil {
		return swatch.ColorPoint{}, canceled(err)
	}

	point, err := limiter.Run(ctx, lim, func(ctx context.Context) (swatch.ColorPoint, error) {
		if err := ctx.Err(); err != nil {
			return swatch.ColorPoint{}, canceled(err)
		}
		return o.Lookup(ctx, hue, saturation, lightness)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return swatch.ColorPoint{}, canceled(ctxErr)
		}
		return swatch.ColorPoint{}, err
	}

	return point, nil
}
