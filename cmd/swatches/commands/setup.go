package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dyluth/swatches/internal/cache"
	"github.com/dyluth/swatches/internal/config"
	"github.com/dyluth/swatches/internal/oracle"
	"github.com/dyluth/swatches/internal/printer"
	"github.com/dyluth/swatches/pkg/swatch"
)

// store is what every cache backend provides.
type store interface {
	Get(ctx context.Context, saturation, lightness int) (swatch.Collection, error)
	Set(ctx context.Context, saturation, lightness int, c swatch.Collection) error
	Remove(ctx context.Context, saturation, lightness int) error
	Clear(ctx context.Context) (int, error)
	Close() error
}

// loadConfig reads --config, falling back to defaults when the file is absent.
func loadConfig() (*config.SwatchesConfig, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{
				fmt.Sprintf("Fix %s", configPath),
				"Regenerate it:\n  swatches init --force",
			},
		)
	}
	return cfg, nil
}

// openStore connects the configured cache backend. The Redis client is also
// returned so callers can publish or subscribe; it is nil for other backends.
func openStore(ctx context.Context, cfg *config.CacheConfig) (store, *swatch.Client, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		client, err := swatch.NewClientFromURL(cfg.RedisURL, cfg.Namespace)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, printer.ErrorWithContext(
				"redis unavailable",
				"Could not connect to the configured Redis cache.",
				map[string]string{"URL": cfg.RedisURL, "Error": err.Error()},
				[]string{
					"Start Redis:\n  docker run -d -p 6379:6379 redis:7-alpine",
					"Use another backend: set cache.backend to memory or sqlite",
				},
			)
		}
		return client, client, nil

	case config.BackendSQLite:
		path, err := cfg.ResolvedSQLitePath()
		if err != nil {
			return nil, nil, err
		}
		db, err := cache.OpenSQLite(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite cache: %w", err)
		}
		return db, nil, nil

	default:
		return cache.NewMemory(), nil, nil
	}
}

// newOracle builds the color namer: the remote API, or the built-in palette
// when offline.
func newOracle(cfg *config.APIConfig, offline bool) (oracle.Oracle, error) {
	if offline {
		p, err := oracle.NewPalette(oracle.DefaultPalette)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	c, err := oracle.NewHTTPClient(oracle.HTTPConfig{
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.TimeoutDuration(),
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            slog.Default(),
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// resolveSL picks flag values over configured defaults.
func resolveSL(cfg *config.SwatchesConfig, saturation, lightness int, saturationSet, lightnessSet bool) (int, int, error) {
	s, l := *cfg.Defaults.Saturation, *cfg.Defaults.Lightness
	if saturationSet {
		s = saturation
	}
	if lightnessSet {
		l = lightness
	}
	if err := swatch.ValidateSL(s, l); err != nil {
		return 0, 0, printer.Error(
			"invalid saturation or lightness",
			err.Error(),
			[]string{"Both values are percentages between 0 and 100"},
		)
	}
	return s, l, nil
}
