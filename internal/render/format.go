// Package render formats swatch collections for the CLI.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dyluth/swatches/pkg/swatch"
)

// Output formats accepted by Write.
const (
	FormatNameTable = "table"
	FormatNameJSON  = "json"
	FormatNameJSONL = "jsonl"
)

// Document is the JSON shape of one saturation/lightness result.
type Document struct {
	Saturation int               `json:"saturation"`
	Lightness  int               `json:"lightness"`
	Cached     bool              `json:"cached"`
	Total      int               `json:"total"`
	Swatches   swatch.Collection `json:"swatches"`
}

// Write renders doc in the named format.
func Write(w io.Writer, format string, doc Document) error {
	switch format {
	case FormatNameTable, "":
		FormatTable(w, doc)
		return nil
	case FormatNameJSON:
		return FormatJSON(w, doc)
	case FormatNameJSONL:
		return FormatJSONL(w, doc.Swatches)
	default:
		return fmt.Errorf("unsupported output format: %s (must be 'table', 'json', or 'jsonl')", format)
	}
}

// FormatTable writes the swatches as a formatted table to the provided writer.
// Returns the number of swatches formatted.
func FormatTable(w io.Writer, doc Document) int {
	if len(doc.Swatches) == 0 {
		fmt.Fprintf(w, "No colors found for saturation %d%%, lightness %d%%\n", doc.Saturation, doc.Lightness)
		return 0
	}

	fmt.Fprintf(w, "Colors at saturation %d%%, lightness %d%%:\n\n", doc.Saturation, doc.Lightness)

	fmt.Fprintf(w, "%-5s %-24s %-8s %s\n", "HUE", "NAME", "HEX", "RGB")
	fmt.Fprintf(w, "%-5s %-24s %-8s %s\n", "-----", "------------------------", "--------", "-----------")

	for _, p := range doc.Swatches {
		fmt.Fprintf(w, "%-5d %-24s %-8s %s\n", p.Hue, formatName(p.Name), p.Hex, formatRGB(p.RGB))
	}

	countMsg := "color"
	if len(doc.Swatches) != 1 {
		countMsg = "colors"
	}
	source := "discovered"
	if doc.Cached {
		source = "from cache"
	}
	fmt.Fprintf(w, "\n%d %s %s\n", len(doc.Swatches), countMsg, source)

	return len(doc.Swatches)
}

// FormatJSONL writes one JSON object per color, in hue order.
func FormatJSONL(w io.Writer, c swatch.Collection) error {
	for _, p := range c {
		if err := WritePointJSON(w, p); err != nil {
			return err
		}
	}
	return nil
}

// WritePointJSON writes a single color as one line of JSON.
func WritePointJSON(w io.Writer, p swatch.ColorPoint) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal color to JSON: %w", err)
	}

	if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("failed to write JSONL output: %w", err)
	}
	return nil
}

// FormatJSON writes the whole document as pretty-printed JSON.
func FormatJSON(w io.Writer, doc Document) error {
	if doc.Swatches == nil {
		doc.Swatches = swatch.Collection{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result to JSON: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)

	return nil
}

// formatName truncates long names to fit the table column.
func formatName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > 24 {
		return name[:21] + "..."
	}
	return name
}

func formatRGB(c swatch.RGB) string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}
