// Package gate decides whether a discovery run is needed.
//
// A Gate serves complete cached collections directly and runs discovery only
// on a miss, accumulating the streamed colors in hue order and storing the
// finished collection. Storage problems never fail a request: a failed read
// is a miss and a failed write is logged and dropped.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dyluth/swatches/internal/discovery"
	"github.com/dyluth/swatches/pkg/swatch"
)

// ErrSuperseded is the cancellation cause recorded when a newer request for
// the same saturation/lightness pair replaces a running one.
var ErrSuperseded = errors.New("superseded by a newer request")

const publishQueueSize = 64

// Discoverer runs a discovery for one saturation/lightness pair.
// *discovery.Engine satisfies it.
type Discoverer interface {
	Discover(ctx context.Context, saturation, lightness int, onColorFound func(swatch.ColorPoint)) error
}

// Store holds complete collections keyed by saturation/lightness.
// Get returns swatch.ErrNotFound on a miss.
type Store interface {
	Get(ctx context.Context, saturation, lightness int) (swatch.Collection, error)
	Set(ctx context.Context, saturation, lightness int, c swatch.Collection) error
}

// Publisher receives every color as it is found. *swatch.Client satisfies it.
type Publisher interface {
	PublishEvent(ctx context.Context, event *swatch.Event) error
}

// Result is the outcome of a Fetch.
type Result struct {
	Saturation int
	Lightness  int
	Swatches   swatch.Collection // hue-ordered
	Cached     bool              // served from the store without discovery
	Total      int
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the gate's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// WithPublisher publishes each discovered color, best effort.
func WithPublisher(p Publisher) Option {
	return func(g *Gate) {
		g.publisher = p
	}
}

// inflight tracks the running request for one key.
type inflight struct {
	id     uint64
	cancel context.CancelCauseFunc
	done   chan struct{}
}

// Gate fronts a Discoverer with a Store. It is safe for concurrent use.
type Gate struct {
	discoverer Discoverer
	store      Store
	publisher  Publisher
	logger     *slog.Logger

	mu       sync.Mutex
	seq      uint64
	inflight map[string]*inflight
}

// New creates a gate.
func New(d Discoverer, store Store, opts ...Option) (*Gate, error) {
	if d == nil {
		return nil, fmt.Errorf("discoverer is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	g := &Gate{
		discoverer: d,
		store:      store,
		logger:     slog.Default(),
		inflight:   make(map[string]*inflight),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "gate")

	return g, nil
}

// Fetch returns every named color for (saturation, lightness).
//
// A cached collection is returned as is with Cached set; onColorFound is not
// called for it. Otherwise discovery runs and each new color is passed to
// onColorFound (which may be nil) as it is found. A successful run is stored,
// replacing any previous entry.
//
// A running Fetch for the same pair is cancelled and waited for before this
// one starts. On failure the returned Result holds the colors found so far.
func (g *Gate) Fetch(ctx context.Context, saturation, lightness int, onColorFound func(swatch.ColorPoint)) (*Result, error) {
	if err := swatch.ValidateSL(saturation, lightness); err != nil {
		return nil, err
	}

	key := swatch.CacheKey(saturation, lightness)
	runCtx, finish, err := g.begin(ctx, key)
	if err != nil {
		return nil, err
	}
	defer finish()

	logger := g.logger.With("key", key)

	cached, err := g.store.Get(runCtx, saturation, lightness)
	switch {
	case err == nil:
		logger.Debug("cache hit", "colors", len(cached))
		return &Result{
			Saturation: saturation,
			Lightness:  lightness,
			Swatches:   cached,
			Cached:     true,
			Total:      len(cached),
		}, nil
	case swatch.IsNotFound(err):
		logger.Debug("cache miss")
	default:
		logger.Warn("cache read failed, running discovery", "error", err)
	}

	events, stopPublishing := g.startPublisher(runCtx, logger)
	runID := uuid.NewString()
	var mu sync.Mutex
	collection := swatch.Collection{}

	err = g.discoverer.Discover(runCtx, saturation, lightness, func(p swatch.ColorPoint) {
		mu.Lock()
		collection = collection.Insert(p)
		mu.Unlock()

		if events != nil {
			select {
			case events <- &swatch.Event{RunID: runID, Saturation: saturation, Lightness: lightness, Point: p}:
			default:
				logger.Debug("event queue full, dropping event", "hue", p.Hue)
			}
		}

		if onColorFound != nil {
			onColorFound(p)
		}
	})
	stopPublishing()

	mu.Lock()
	result := &Result{
		Saturation: saturation,
		Lightness:  lightness,
		Swatches:   collection.Clone(),
		Total:      len(collection),
	}
	mu.Unlock()

	if err != nil {
		if discovery.IsCanceled(err) && errors.Is(context.Cause(runCtx), ErrSuperseded) {
			err = fmt.Errorf("%w: %w", err, ErrSuperseded)
		}
		return result, err
	}

	if err := g.store.Set(runCtx, saturation, lightness, result.Swatches); err != nil {
		logger.Warn("cache write failed", "error", err)
	}

	return result, nil
}

// Cancel aborts the running Fetch for (saturation, lightness), if any.
func (g *Gate) Cancel(saturation, lightness int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cur, ok := g.inflight[swatch.CacheKey(saturation, lightness)]; ok {
		cur.cancel(context.Canceled)
	}
}

// Close aborts every running Fetch.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, cur := range g.inflight {
		cur.cancel(context.Canceled)
	}
}

// begin registers a new request for key, cancelling and waiting out any
// previous one. The returned finish func must be called when the request ends.
func (g *Gate) begin(parent context.Context, key string) (context.Context, func(), error) {
	ctx, cancel := context.WithCancelCause(parent)
	current := &inflight{cancel: cancel, done: make(chan struct{})}

	g.mu.Lock()
	prev := g.inflight[key]
	if prev != nil {
		prev.cancel(ErrSuperseded)
	}
	g.seq++
	current.id = g.seq
	g.inflight[key] = current
	g.mu.Unlock()

	finish := func() {
		g.mu.Lock()
		if g.inflight[key] == current {
			delete(g.inflight, key)
		}
		g.mu.Unlock()
		cancel(nil)
		close(current.done)
	}

	if prev != nil {
		g.logger.Debug("superseding running request", "key", key, "previous", prev.id, "current", current.id)
		// Only one run per key may be active.
		<-prev.done
		if ctx.Err() != nil {
			cause := context.Cause(ctx)
			finish()
			return nil, nil, fmt.Errorf("%w: %w", discovery.ErrCanceled, cause)
		}
	}

	return ctx, finish, nil
}

// startPublisher forwards events to the publisher off the discovery path.
// The returned stop func drains the queue and waits for the forwarder.
func (g *Gate) startPublisher(ctx context.Context, logger *slog.Logger) (chan<- *swatch.Event, func()) {
	if g.publisher == nil {
		return nil, func() {}
	}

	events := make(chan *swatch.Event, publishQueueSize)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for event := range events {
			if err := g.publisher.PublishEvent(ctx, event); err != nil {
				logger.Debug("publish failed", "hue", event.Point.Hue, "error", err)
			}
		}
	}()

	return events, func() {
		close(events)
		<-done
	}
}
