// Package swatch provides the shared data model for named-color discovery and
// a Redis-backed store for complete discovery results.
//
// # Overview
//
// A ColorPoint is one oracle answer: the name, hex and RGB value of the color
// at a given hue for a fixed saturation and lightness. A Collection is the
// hue-ordered list of distinct named colors found for one saturation/lightness
// pair. Collections are cached whole; a cache entry is never patched in place.
//
// # Usage Example
//
//	import "github.com/dyluth/swatches/pkg/swatch"
//
//	client, err := swatch.NewClientFromURL("redis://localhost:6379", "swatches")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	var c swatch.Collection
//	c = c.Insert(swatch.ColorPoint{Hue: 120, Name: "Green", Hex: "#00FF00", RGB: swatch.RGB{G: 255}})
//	c = c.Insert(swatch.ColorPoint{Hue: 0, Name: "Red", Hex: "#FF0000", RGB: swatch.RGB{R: 255}})
//	// c is now [Red Green]
//
//	if err := client.Set(ctx, 100, 50, c); err != nil {
//		log.Fatal(err)
//	}
//
// # Redis Schema
//
// Entries: {namespace}:swatches:{s}:{l} (JSON array of points)
// Index: {namespace}:swatch_index (set of entry keys, used by Clear)
// Events: {namespace}:swatch_events (one JSON Event per discovered color)
package swatch
