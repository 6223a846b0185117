package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/swatches/pkg/swatch"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "swatches.yml"

// Cache backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

const (
	defaultBaseURL          = "https://www.thecolorapi.com"
	defaultTimeout          = "10s"
	defaultStartingSamples  = 10
	defaultConcurrencyLimit = 20
	defaultSaturation       = 100
	defaultLightness        = 50
	defaultRedisURL         = "redis://localhost:6379"
	defaultNamespace        = "swatches"
	defaultSQLitePath       = "~/.swatches/cache.db"
)

// SwatchesConfig represents the top-level swatches.yml configuration
type SwatchesConfig struct {
	Version   string           `yaml:"version"`
	API       *APIConfig       `yaml:"api,omitempty"`
	Algorithm *AlgorithmConfig `yaml:"algorithm,omitempty"`
	Defaults  *DefaultsConfig  `yaml:"defaults,omitempty"`
	Cache     *CacheConfig     `yaml:"cache,omitempty"`
}

// APIConfig points at the color naming service
type APIConfig struct {
	BaseURL           string  `yaml:"base_url,omitempty"`
	Timeout           string  `yaml:"timeout,omitempty"`             // Go duration, e.g. "10s"
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"` // 0 = unpaced
}

// AlgorithmConfig tunes the boundary search
type AlgorithmConfig struct {
	StartingSamples  int `yaml:"starting_samples,omitempty"`
	ConcurrencyLimit int `yaml:"concurrency_limit,omitempty"`
}

// DefaultsConfig holds the saturation/lightness used when none is given.
// Pointers distinguish an explicit 0 from unset.
type DefaultsConfig struct {
	Saturation *int `yaml:"saturation,omitempty"`
	Lightness  *int `yaml:"lightness,omitempty"`
}

// CacheConfig selects and configures the result store
type CacheConfig struct {
	Backend    string `yaml:"backend,omitempty"` // memory, redis or sqlite
	RedisURL   string `yaml:"redis_url,omitempty"`
	Namespace  string `yaml:"namespace,omitempty"`
	SQLitePath string `yaml:"sqlite_path,omitempty"`
}

// Default returns a fully populated configuration
func Default() *SwatchesConfig {
	cfg := &SwatchesConfig{Version: "1.0"}
	// Validate cannot fail on an empty config with a supported version.
	_ = cfg.Validate()
	return cfg
}

// Validate fills in defaults and performs strict validation on the configuration
func (c *SwatchesConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.API == nil {
		c.API = &APIConfig{}
	}
	if err := c.API.Validate(); err != nil {
		return err
	}

	if c.Algorithm == nil {
		c.Algorithm = &AlgorithmConfig{}
	}
	if err := c.Algorithm.Validate(); err != nil {
		return err
	}

	if c.Defaults == nil {
		c.Defaults = &DefaultsConfig{}
	}
	if err := c.Defaults.Validate(); err != nil {
		return err
	}

	if c.Cache == nil {
		c.Cache = &CacheConfig{}
	}
	return c.Cache.Validate()
}

// Validate applies API defaults and checks the URL and timeout
func (a *APIConfig) Validate() error {
	if a.BaseURL == "" {
		a.BaseURL = defaultBaseURL
	}
	u, err := url.ParseRequestURI(a.BaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("api.base_url is not a valid URL: %s", a.BaseURL)
	}

	if a.Timeout == "" {
		a.Timeout = defaultTimeout
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return fmt.Errorf("api.timeout is not a valid duration: %s", a.Timeout)
	}
	if d <= 0 {
		return fmt.Errorf("api.timeout must be > 0, got %s", a.Timeout)
	}

	if a.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second must be >= 0 (0 = unpaced), got %g", a.RequestsPerSecond)
	}

	return nil
}

// TimeoutDuration returns the parsed request timeout. Call after Validate.
func (a *APIConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		d, _ = time.ParseDuration(defaultTimeout)
	}
	return d
}

// Validate applies algorithm defaults and checks bounds
func (a *AlgorithmConfig) Validate() error {
	if a.StartingSamples == 0 {
		a.StartingSamples = defaultStartingSamples
	}
	if a.StartingSamples < 3 || a.StartingSamples > swatch.MaxHue+1 {
		return fmt.Errorf("algorithm.starting_samples must be between 3 and %d, got %d", swatch.MaxHue+1, a.StartingSamples)
	}

	if a.ConcurrencyLimit == 0 {
		a.ConcurrencyLimit = defaultConcurrencyLimit
	}
	if a.ConcurrencyLimit < 1 {
		return fmt.Errorf("algorithm.concurrency_limit must be >= 1, got %d", a.ConcurrencyLimit)
	}

	return nil
}

// Validate applies the default saturation/lightness and checks their range
func (d *DefaultsConfig) Validate() error {
	if d.Saturation == nil {
		s := defaultSaturation
		d.Saturation = &s
	}
	if d.Lightness == nil {
		l := defaultLightness
		d.Lightness = &l
	}

	if err := swatch.ValidateSL(*d.Saturation, *d.Lightness); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	return nil
}

// Validate applies cache defaults and checks the backend settings
func (c *CacheConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.Namespace == "" {
		c.Namespace = defaultNamespace
	}

	switch c.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			c.RedisURL = defaultRedisURL
		}
		if !strings.HasPrefix(c.RedisURL, "redis://") && !strings.HasPrefix(c.RedisURL, "rediss://") {
			return fmt.Errorf("cache.redis_url must start with redis:// or rediss://, got %s", c.RedisURL)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			c.SQLitePath = defaultSQLitePath
		}
	default:
		return fmt.Errorf("invalid cache.backend: %s (must be 'memory', 'redis', or 'sqlite')", c.Backend)
	}

	return nil
}

// ResolvedSQLitePath expands a leading ~ in the sqlite path
func (c *CacheConfig) ResolvedSQLitePath() (string, error) {
	path := c.SQLitePath
	if path == "" {
		path = defaultSQLitePath
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path, nil
}

// Load reads and validates swatches.yml from the specified path
func Load(path string) (*SwatchesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config SwatchesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault is Load, except a missing file yields Default()
func LoadOrDefault(path string) (*SwatchesConfig, error) {
	config, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return config, err
}

// Save writes the configuration as YAML, refusing to overwrite unless force is set
func Save(path string, config *SwatchesConfig, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
