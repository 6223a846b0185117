package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "swatches.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

func intPtr(v int) *int {
	return &v
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `version: "1.0"
api:
  base_url: "http://localhost:8080"
  timeout: "2s"
  requests_per_second: 5
algorithm:
  starting_samples: 12
  concurrency_limit: 4
defaults:
  saturation: 0
  lightness: 75
cache:
  backend: redis
  redis_url: "redis://cache:6379"
  namespace: "test"
`)

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "1.0", config.Version)
	assert.Equal(t, "http://localhost:8080", config.API.BaseURL)
	assert.Equal(t, 2*time.Second, config.API.TimeoutDuration())
	assert.Equal(t, 5.0, config.API.RequestsPerSecond)
	assert.Equal(t, 12, config.Algorithm.StartingSamples)
	assert.Equal(t, 4, config.Algorithm.ConcurrencyLimit)
	assert.Equal(t, 0, *config.Defaults.Saturation, "explicit zero must survive defaulting")
	assert.Equal(t, 75, *config.Defaults.Lightness)
	assert.Equal(t, BackendRedis, config.Cache.Backend)
	assert.Equal(t, "redis://cache:6379", config.Cache.RedisURL)
	assert.Equal(t, "test", config.Cache.Namespace)
}

func TestLoad_MinimalConfigAppliesDefaults(t *testing.T) {
	config, err := Load(writeConfig(t, `version: "1.0"`))
	require.NoError(t, err)

	assert.Equal(t, "https://www.thecolorapi.com", config.API.BaseURL)
	assert.Equal(t, 10*time.Second, config.API.TimeoutDuration())
	assert.Zero(t, config.API.RequestsPerSecond)
	assert.Equal(t, 10, config.Algorithm.StartingSamples)
	assert.Equal(t, 20, config.Algorithm.ConcurrencyLimit)
	assert.Equal(t, 100, *config.Defaults.Saturation)
	assert.Equal(t, 50, *config.Defaults.Lightness)
	assert.Equal(t, BackendMemory, config.Cache.Backend)
	assert.Equal(t, "swatches", config.Cache.Namespace)
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/swatches.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	config, err := Load(writeConfig(t, `version: "1.0"
algorithm:
  - this is invalid
    yaml syntax
`))
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		config, err := LoadOrDefault(filepath.Join(t.TempDir(), "swatches.yml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), config)
	})

	t.Run("invalid file is still an error", func(t *testing.T) {
		_, err := LoadOrDefault(writeConfig(t, `version: "9.9"`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *SwatchesConfig
		wantErr string
	}{
		{
			name:    "unsupported version",
			config:  &SwatchesConfig{Version: "2.0"},
			wantErr: "unsupported version: 2.0",
		},
		{
			name:    "relative base url",
			config:  &SwatchesConfig{Version: "1.0", API: &APIConfig{BaseURL: "not a url"}},
			wantErr: "api.base_url is not a valid URL",
		},
		{
			name:    "bad timeout",
			config:  &SwatchesConfig{Version: "1.0", API: &APIConfig{Timeout: "soon"}},
			wantErr: "api.timeout is not a valid duration",
		},
		{
			name:    "negative timeout",
			config:  &SwatchesConfig{Version: "1.0", API: &APIConfig{Timeout: "-1s"}},
			wantErr: "api.timeout must be > 0",
		},
		{
			name:    "negative rate",
			config:  &SwatchesConfig{Version: "1.0", API: &APIConfig{RequestsPerSecond: -1}},
			wantErr: "api.requests_per_second must be >= 0",
		},
		{
			name:    "too few samples",
			config:  &SwatchesConfig{Version: "1.0", Algorithm: &AlgorithmConfig{StartingSamples: 2}},
			wantErr: "algorithm.starting_samples must be between 3 and 360",
		},
		{
			name:    "too many samples",
			config:  &SwatchesConfig{Version: "1.0", Algorithm: &AlgorithmConfig{StartingSamples: 361}},
			wantErr: "algorithm.starting_samples must be between 3 and 360",
		},
		{
			name:    "negative concurrency",
			config:  &SwatchesConfig{Version: "1.0", Algorithm: &AlgorithmConfig{ConcurrencyLimit: -4}},
			wantErr: "algorithm.concurrency_limit must be >= 1",
		},
		{
			name:    "saturation out of range",
			config:  &SwatchesConfig{Version: "1.0", Defaults: &DefaultsConfig{Saturation: intPtr(101)}},
			wantErr: "defaults:",
		},
		{
			name:    "lightness out of range",
			config:  &SwatchesConfig{Version: "1.0", Defaults: &DefaultsConfig{Lightness: intPtr(-1)}},
			wantErr: "defaults:",
		},
		{
			name:    "unknown backend",
			config:  &SwatchesConfig{Version: "1.0", Cache: &CacheConfig{Backend: "memcached"}},
			wantErr: "invalid cache.backend: memcached",
		},
		{
			name:    "bad redis url",
			config:  &SwatchesConfig{Version: "1.0", Cache: &CacheConfig{Backend: BackendRedis, RedisURL: "localhost:6379"}},
			wantErr: "cache.redis_url must start with redis://",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_BackendDefaults(t *testing.T) {
	redisCfg := &CacheConfig{Backend: BackendRedis}
	require.NoError(t, redisCfg.Validate())
	assert.Equal(t, "redis://localhost:6379", redisCfg.RedisURL)

	sqliteCfg := &CacheConfig{Backend: BackendSQLite}
	require.NoError(t, sqliteCfg.Validate())
	assert.Equal(t, "~/.swatches/cache.db", sqliteCfg.SQLitePath)
}

func TestResolvedSQLitePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	c := &CacheConfig{SQLitePath: "~/.swatches/cache.db"}
	path, err := c.ResolvedSQLitePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".swatches", "cache.db"), path)

	c = &CacheConfig{SQLitePath: "/tmp/cache.db"}
	path, err = c.ResolvedSQLitePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cache.db", path)
}

func TestSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "swatches.yml")

	require.NoError(t, Save(configPath, Default(), false))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `version: "1.0"`))

	loaded, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)

	t.Run("refuses to overwrite", func(t *testing.T) {
		err := Save(configPath, Default(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("force overwrites", func(t *testing.T) {
		require.NoError(t, Save(configPath, Default(), true))
	})
}
