// Package render turns computed charts into output formats: plotly-style
// JSON figures, SVG, Graphviz DOT and terminal text.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/TFMV/refugeeflow/models"
	"github.com/TFMV/refugeeflow/view"
)

// ErrUnsupportedFormat is returned for an unknown format, or a format that
// cannot show the requested chart kind
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Dashboard colours
const (
	backgroundColor = "#1f2630"
	accentColor     = "#2cfec1"
	gridColor       = "#5b5b5b"
	edgeColor       = "#888888"
)

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format     string  // Output format (json, svg, dot, ascii)
	Width      float64 // Width of the output
	Height     float64 // Height of the output
	Background string  // Background color
	NodeSize   float64 // Base node radius
	FontSize   float64 // Font size for labels
	ShowLabels bool    // Show node labels
	Pretty     bool    // Indent JSON output
}

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// Render creates a representation of the chart using the provided options
	Render(chart *view.Chart, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// ContentType returns the MIME type of the rendered output
	ContentType() string
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Width:      800,
		Height:     600,
		Background: backgroundColor,
		NodeSize:   4.0,
		FontSize:   10.0,
		ShowLabels: true,
		Pretty:     true,
	}
}

// Formats lists the supported output formats
func Formats() []string {
	return []string{"json", "svg", "dot", "ascii"}
}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return &JSONRenderer{}, nil
	case "svg":
		return &SVGRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	case "ascii", "text":
		return &ASCIIRenderer{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Generate renders a chart in the given format with default options
func Generate(chart *view.Chart, format string) ([]byte, error) {
	return GenerateWithOptions(chart, NewDefaultOptions(format))
}

// GenerateWithOptions renders a chart with specific output options
func GenerateWithOptions(chart *view.Chart, options *OutputOptions) ([]byte, error) {
	renderer, err := GetRenderer(options.Format)
	if err != nil {
		return nil, err
	}
	return renderer.Render(chart, options)
}

func unsupported(r Renderer, kind models.ChartKind) error {
	return fmt.Errorf("%w: %s cannot draw %s charts", ErrUnsupportedFormat, r.Name(), kind)
}

// Helper functions

// toCanvas maps a normalised layout coordinate in [-1, 1] onto the canvas
func toCanvas(v, size, margin float64) float64 {
	return margin + (v+1)/2*(size-2*margin)
}

// nodeRadius grows with degree the way the dashboard sized its markers
func nodeRadius(base float64, degree int) float64 {
	r := base + float64(degree)
	if r > 6*base {
		return 6 * base
	}
	return r
}

// Clamp a value between min and max
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// escape makes a label safe inside XML
func escape(s string) string {
	r := strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
