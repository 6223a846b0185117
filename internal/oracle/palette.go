package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dyluth/swatches/pkg/swatch"
)

// NamedColor is a palette entry.
type NamedColor struct {
	Name string
	Hex  string
}

// DefaultPalette is a small set of common color names spread around the wheel.
// Greys are included so desaturated or very dark/light inputs resolve sensibly.
var DefaultPalette = []NamedColor{
	{"Red", "#FF0000"},
	{"Crimson", "#DC143C"},
	{"Scarlet", "#FF2400"},
	{"Vermilion", "#E34234"},
	{"Orange Red", "#FF4500"},
	{"Orange", "#FF8000"},
	{"Amber", "#FFBF00"},
	{"Gold", "#FFD700"},
	{"Yellow", "#FFFF00"},
	{"Lime", "#BFFF00"},
	{"Chartreuse", "#7FFF00"},
	{"Green", "#00FF00"},
	{"Spring Green", "#00FF7F"},
	{"Aquamarine", "#7FFFD4"},
	{"Cyan", "#00FFFF"},
	{"Azure", "#007FFF"},
	{"Blue", "#0000FF"},
	{"Indigo", "#4B0082"},
	{"Violet", "#8000FF"},
	{"Purple", "#800080"},
	{"Magenta", "#FF00FF"},
	{"Rose", "#FF007F"},
	{"Maroon", "#800000"},
	{"Olive", "#808000"},
	{"Navy Blue", "#000080"},
	{"Teal", "#008080"},
	{"Forest Green", "#228B22"},
	{"Pink", "#FFC0CB"},
	{"Lavender", "#E6E6FA"},
	{"Peach", "#FFE5B4"},
	{"Mint", "#98FF98"},
	{"Sky Blue", "#87CEEB"},
	{"Black", "#000000"},
	{"Charcoal", "#36454F"},
	{"Gray", "#808080"},
	{"Silver", "#C0C0C0"},
	{"White", "#FFFFFF"},
}

type paletteEntry struct {
	name  string
	color colorful.Color
}

// Palette names colors by nearest perceptual match (CIEDE2000) against a fixed
// list. It never fails other than on cancellation.
type Palette struct {
	entries []paletteEntry
}

// NewPalette builds a palette oracle. A nil or empty list uses DefaultPalette.
func NewPalette(colors []NamedColor) (*Palette, error) {
	if len(colors) == 0 {
		colors = DefaultPalette
	}

	entries := make([]paletteEntry, 0, len(colors))
	seen := make(map[string]bool, len(colors))
	for _, nc := range colors {
		if nc.Name == "" {
			return nil, fmt.Errorf("palette entry %q: name is required", nc.Hex)
		}
		if seen[nc.Name] {
			return nil, fmt.Errorf("palette entry %q: duplicate name", nc.Name)
		}
		seen[nc.Name] = true

		c, err := colorful.Hex(nc.Hex)
		if err != nil {
			return nil, fmt.Errorf("palette entry %q: invalid hex %q: %w", nc.Name, nc.Hex, err)
		}
		entries = append(entries, paletteEntry{name: nc.Name, color: c})
	}

	return &Palette{entries: entries}, nil
}

// Lookup returns the palette name nearest to the HSL point. Hex and RGB
// describe the probed color itself, not the palette entry.
func (p *Palette) Lookup(ctx context.Context, hue, saturation, lightness int) (swatch.ColorPoint, error) {
	if err := ctx.Err(); err != nil {
		return swatch.ColorPoint{}, err
	}

	probe := colorful.Hsl(float64(hue), float64(saturation)/100, float64(lightness)/100).Clamped()

	best := p.entries[0]
	bestDist := probe.DistanceCIEDE2000(best.color)
	for _, e := range p.entries[1:] {
		if d := probe.DistanceCIEDE2000(e.color); d < bestDist {
			best, bestDist = e, d
		}
	}

	r, g, b := probe.RGB255()
	return swatch.ColorPoint{
		Hue:  hue,
		Name: best.name,
		Hex:  strings.ToUpper(probe.Hex()),
		RGB:  swatch.RGB{R: int(r), G: int(g), B: int(b)},
	}, nil
}
