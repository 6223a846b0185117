// Package discovery finds every distinct named color along the hue axis for a
// fixed saturation and lightness.
//
// A run samples the hue circle evenly, then bisects every gap whose endpoints
// carry different names until neighbouring probes are one degree apart. All
// probes of a run share one limiter, so the recursion tree can fan out freely
// while the number of in-flight oracle calls stays bounded.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dyluth/swatches/internal/limiter"
	"github.com/dyluth/swatches/internal/oracle"
	"github.com/dyluth/swatches/pkg/swatch"
)

const (
	// DefaultStartingSamples is the number of evenly spaced initial probes.
	DefaultStartingSamples = 10

	// DefaultConcurrencyLimit caps in-flight oracle calls per run.
	DefaultConcurrencyLimit = 20

	// minSamples keeps both ends of the circle plus one interior point.
	minSamples = 3
)

// Config tunes an Engine. Zero values select the defaults.
type Config struct {
	StartingSamples  int
	ConcurrencyLimit int
	Logger           *slog.Logger
}

// Engine runs discovery against an oracle. It holds no per-run state and is
// safe for concurrent use; each run gets its own limiter and name set.
type Engine struct {
	oracle  oracle.Oracle
	samples int
	limit   int
	logger  *slog.Logger
}

// Stats summarises one run.
type Stats struct {
	RunID    string
	Probes   int // oracle lookups issued
	Emitted  int // distinct names reported
	Duration time.Duration
}

// NewEngine creates an engine for the given oracle.
func NewEngine(o oracle.Oracle, cfg Config) (*Engine, error) {
	if o == nil {
		return nil, fmt.Errorf("oracle is required")
	}

	samples := cfg.StartingSamples
	if samples == 0 {
		samples = DefaultStartingSamples
	}

	limit := cfg.ConcurrencyLimit
	if limit == 0 {
		limit = DefaultConcurrencyLimit
	}
	if limit < 0 {
		return nil, fmt.Errorf("concurrency limit must be > 0, got %d", limit)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		oracle:  o,
		samples: samples,
		limit:   limit,
		logger:  logger.With("component", "discovery"),
	}, nil
}

// SampleHues returns count evenly spaced hues from 0 to 359 inclusive.
// Counts below 3 are treated as 3.
func SampleHues(count int) []int {
	if count < minSamples {
		count = minSamples
	}
	hues := make([]int, count)
	for i := range hues {
		hues[i] = int(math.Round(float64(swatch.MaxHue*i) / float64(count-1)))
	}
	return hues
}

// Discover reports every distinct color name found for (saturation,
// lightness) through onColorFound, then returns once the search is complete.
//
// onColorFound is called synchronously, at most once per name, and never
// concurrently with itself. Initial samples are reported in ascending hue
// order; colors found while bisecting are reported as they arrive. The first
// probe failure aborts the run and is returned; colors already reported stay
// reported.
func (e *Engine) Discover(ctx context.Context, saturation, lightness int, onColorFound func(swatch.ColorPoint)) error {
	_, err := e.DiscoverWithStats(ctx, saturation, lightness, onColorFound)
	return err
}

// DiscoverWithStats is Discover that also returns run statistics, including
// for failed runs.
func (e *Engine) DiscoverWithStats(ctx context.Context, saturation, lightness int, onColorFound func(swatch.ColorPoint)) (Stats, error) {
	stats := Stats{RunID: uuid.NewString()}

	if err := swatch.ValidateSL(saturation, lightness); err != nil {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, canceled(err)
	}

	lim, err := limiter.New(e.limit)
	if err != nil {
		return stats, err
	}

	r := &run{
		limiter:    lim,
		saturation: saturation,
		lightness:  lightness,
		found:      newFoundNames(onColorFound),
		logger:     e.logger.With("run_id", stats.RunID, "saturation", saturation, "lightness", lightness),
	}
	r.oracle = oracle.Func(func(ctx context.Context, hue, s, l int) (swatch.ColorPoint, error) {
		r.probes.Add(1)
		return e.oracle.Lookup(ctx, hue, s, l)
	})

	start := time.Now()
	r.logger.Info("discovery started", "samples", e.samples, "concurrency_limit", e.limit)

	err = r.search(ctx, SampleHues(e.samples))

	stats.Probes = int(r.probes.Load())
	stats.Emitted = r.found.count()
	stats.Duration = time.Since(start)

	switch {
	case err == nil:
		r.logger.Info("discovery complete", "colors", stats.Emitted, "probes", stats.Probes, "duration", stats.Duration)
	case IsCanceled(err):
		r.logger.Info("discovery canceled", "colors", stats.Emitted, "probes", stats.Probes)
	default:
		r.logger.Warn("discovery failed", "colors", stats.Emitted, "probes", stats.Probes, "error", err)
	}

	return stats, err
}

// run is the state of one Discover call.
type run struct {
	oracle     oracle.Oracle
	limiter    *limiter.Limiter
	saturation int
	lightness  int
	found      *foundNames
	probes     atomic.Int64
	logger     *slog.Logger
}

func (r *run) search(ctx context.Context, hues []int) error {
	samples := make([]swatch.ColorPoint, len(hues))

	g, gctx := errgroup.WithContext(ctx)
	for i, hue := range hues {
		i, hue := i, hue
		g.Go(func() error {
			point, err := r.probe(gctx, hue)
			if err != nil {
				return err
			}
			samples[i] = point
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return canceled(err)
	}

	for _, point := range samples {
		r.found.claim(point)
	}

	g, gctx = errgroup.WithContext(ctx)
	for i := 0; i+1 < len(samples); i++ {
		left, right := samples[i], samples[i+1]
		if left.Name == right.Name {
			continue
		}
		g.Go(func() error {
			return r.bisect(gctx, left, right)
		})
	}
	return g.Wait()
}

// bisect narrows the boundary between two differently named points.
// Both halves are searched concurrently when both may hold a boundary.
func (r *run) bisect(ctx context.Context, left, right swatch.ColorPoint) error {
	if right.Hue-left.Hue <= 1 {
		return nil
	}

	mid, err := r.probe(ctx, (left.Hue+right.Hue)/2)
	if err != nil {
		return err
	}
	if r.found.claim(mid) {
		r.logger.Debug("color found", "hue", mid.Hue, "name", mid.Name)
	}

	g, gctx := errgroup.WithContext(ctx)
	if mid.Name != left.Name {
		g.Go(func() error { return r.bisect(gctx, left, mid) })
	}
	if mid.Name != right.Name {
		g.Go(func() error { return r.bisect(gctx, mid, right) })
	}
	return g.Wait()
}

func (r *run) probe(ctx context.Context, hue int) (swatch.ColorPoint, error) {
	if err := ctx.Err(); err != nil {
		return swatch.ColorPoint{}, canceled(err)
	}
	return FetchAt(ctx, r.oracle, r.limiter, hue, r.saturation, r.lightness)
}

// foundNames is the set of names already reported by a run. Checking,
// inserting and reporting a name happen under one lock so concurrent branches
// that find the same name report it exactly once.
type foundNames struct {
	mu    sync.Mutex
	names map[string]struct{}
	emit  func(swatch.ColorPoint)
}

func newFoundNames(emit func(swatch.ColorPoint)) *foundNames {
	return &foundNames{
		names: make(map[string]struct{}),
		emit:  emit,
	}
}

// claim records p's name and reports p if the name is new.
func (f *foundNames) claim(p swatch.ColorPoint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.names[p.Name]; ok {
		return false
	}
	f.names[p.Name] = struct{}{}
	if f.emit != nil {
		f.emit(p)
	}
	return true
}

func (f *foundNames) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.names)
}
