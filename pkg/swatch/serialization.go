package swatch

import (
	"encoding/json"
	"fmt"
)

// Serialization helpers
//
// A cache entry is stored as a single JSON array so that reads and writes are
// whole-value operations; readers never observe a partially written entry.

// EncodeCollection converts a collection to its stored JSON form.
// A nil collection is encoded as an empty array.
func EncodeCollection(c Collection) ([]byte, error) {
	if c == nil {
		c = Collection{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal collection: %w", err)
	}
	return data, nil
}

// DecodeCollection parses a stored entry and checks every point.
// Entries that are not sorted by hue are rejected rather than repaired.
func DecodeCollection(data []byte) (Collection, error) {
	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal collection: %w", err)
	}
	if c == nil {
		c = Collection{}
	}
	for i, p := range c {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid point at index %d: %w", i, err)
		}
	}
	if !c.IsSorted() {
		return nil, fmt.Errorf("collection is not sorted by hue")
	}
	return c, nil
}

// Event is published for every color found during a discovery run.
type Event struct {
	RunID      string     `json:"run_id"`
	Saturation int        `json:"saturation"`
	Lightness  int        `json:"lightness"`
	Point      ColorPoint `json:"point"`
}
