package swatch

import "fmt"

// Key pattern helpers
//
// A cache entry is addressed by its saturation/lightness pair. Redis keys and
// Pub/Sub channels are additionally namespaced so several deployments can share
// one Redis server.
//
// Entry pattern: {namespace}:swatches:{s}:{l}
// Channel pattern: {namespace}:swatch_events

// CacheKey returns the storage key for a saturation/lightness pair.
// Pattern: swatches:{s}:{l}
func CacheKey(saturation, lightness int) string {
	return fmt.Sprintf("swatches:%d:%d", saturation, lightness)
}

// EntryKey returns the namespaced Redis key for a cache entry.
// Pattern: {namespace}:swatches:{s}:{l}
func EntryKey(namespace string, saturation, lightness int) string {
	return fmt.Sprintf("%s:%s", namespace, CacheKey(saturation, lightness))
}

// IndexKey returns the Redis key of the set tracking every stored entry key.
// Pattern: {namespace}:swatch_index
func IndexKey(namespace string) string {
	return fmt.Sprintf("%s:swatch_index", namespace)
}

// EventsChannel returns the Pub/Sub channel carrying discovered colors.
// Pattern: {namespace}:swatch_events
func EventsChannel(namespace string) string {
	return fmt.Sprintf("%s:swatch_events", namespace)
}
