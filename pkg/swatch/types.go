package swatch

import (
	"fmt"
	"sort"
)

// Hue, saturation and lightness bounds accepted by the oracle.
const (
	MinHue        = 0
	MaxHue        = 359
	MaxSaturation = 100
	MaxLightness  = 100
)

// RGB holds 8-bit channel values.
type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// ColorPoint is a named color sampled at a specific hue.
// ColorPoints are values; once produced by an oracle they are never modified.
type ColorPoint struct {
	Hue  int    `json:"hue"`  // Hue in degrees (0-359)
	Name string `json:"name"` // Human-readable color name from the oracle
	Hex  string `json:"hex"`  // "#RRGGBB"
	RGB  RGB    `json:"rgb"`
}

// Validate checks that the point is within the oracle's value ranges.
func (p ColorPoint) Validate() error {
	if p.Hue < MinHue || p.Hue > MaxHue {
		return fmt.Errorf("hue must be between %d and %d, got %d", MinHue, MaxHue, p.Hue)
	}
	if p.Name == "" {
		return fmt.Errorf("name is required (hue %d)", p.Hue)
	}
	for _, ch := range []struct {
		name  string
		value int
	}{{"r", p.RGB.R}, {"g", p.RGB.G}, {"b", p.RGB.B}} {
		if ch.value < 0 || ch.value > 255 {
			return fmt.Errorf("rgb.%s must be between 0 and 255, got %d", ch.name, ch.value)
		}
	}
	return nil
}

// ValidateSL checks a saturation/lightness pair.
func ValidateSL(saturation, lightness int) error {
	if saturation < 0 || saturation > MaxSaturation {
		return fmt.Errorf("saturation must be between 0 and %d, got %d", MaxSaturation, saturation)
	}
	if lightness < 0 || lightness > MaxLightness {
		return fmt.Errorf("lightness must be between 0 and %d, got %d", MaxLightness, lightness)
	}
	return nil
}

// Collection is an ordered-by-hue sequence of distinct named colors.
type Collection []ColorPoint

// Insert adds p at its hue position and returns the grown collection.
// Points with an equal hue are placed after the existing ones, so the
// collection stays non-decreasing in hue without a full resort.
func (c Collection) Insert(p ColorPoint) Collection {
	i := sort.Search(len(c), func(i int) bool { return c[i].Hue > p.Hue })
	c = append(c, ColorPoint{})
	copy(c[i+1:], c[i:])
	c[i] = p
	return c
}

// IsSorted reports whether the collection is non-decreasing in hue.
func (c Collection) IsSorted() bool {
	return sort.SliceIsSorted(c, func(i, j int) bool { return c[i].Hue < c[j].Hue })
}

// Names returns the color names in collection order.
func (c Collection) Names() []string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name
	}
	return names
}

// Clone returns an independent copy of the collection.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	copy(out, c)
	return out
}
