// Package cache provides process-local and file-backed swatch stores.
// The Redis store lives in pkg/swatch.
package cache

import (
	"context"
	"sync"

	"github.com/dyluth/swatches/pkg/swatch"
)

// Memory is an in-process store. Entries are copied on the way in and out so
// callers can never mutate a stored collection.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]swatch.Collection
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]swatch.Collection)}
}

// Get returns the entry for (saturation, lightness) or swatch.ErrNotFound.
func (m *Memory) Get(_ context.Context, saturation, lightness int) (swatch.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.entries[swatch.CacheKey(saturation, lightness)]
	if !ok {
		return nil, swatch.ErrNotFound
	}
	return c.Clone(), nil
}

// Set replaces the entry for (saturation, lightness).
func (m *Memory) Set(_ context.Context, saturation, lightness int, c swatch.Collection) error {
	if c == nil {
		c = swatch.Collection{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[swatch.CacheKey(saturation, lightness)] = c.Clone()
	return nil
}

// Remove deletes the entry for (saturation, lightness).
func (m *Memory) Remove(_ context.Context, saturation, lightness int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, swatch.CacheKey(saturation, lightness))
	return nil
}

// Clear deletes every entry and returns how many there were.
func (m *Memory) Clear(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.entries)
	m.entries = make(map[string]swatch.Collection)
	return n, nil
}

// Close is a no-op. Implements io.Closer.
func (m *Memory) Close() error {
	return nil
}
