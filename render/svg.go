package render

import (
	"bytes"
	"fmt"

	"github.com/TFMV/refugeeflow/view"
)

// SVGRenderer outputs SVG format
type SVGRenderer struct{}

// Name returns the name of the renderer
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// ContentType returns the MIME type of the rendered output
func (r *SVGRenderer) ContentType() string {
	return "image/svg+xml"
}

// Render creates an SVG bar chart or node-link diagram
func (r *SVGRenderer) Render(chart *view.Chart, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%g" height="%g" viewBox="0 0 %g %g" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
<text x="%g" y="24" font-family="sans-serif" font-size="%g" fill="%s" text-anchor="middle">%s</text>
`, options.Width, options.Height, options.Width, options.Height, options.Background,
		options.Width/2, options.FontSize*1.6, accentColor, escape(chart.Title)))

	switch {
	case chart.Bar != nil:
		r.bars(&buf, chart.Bar, options)
	case chart.NodeLink != nil:
		r.nodeLink(&buf, chart.NodeLink, options)
	default:
		return nil, unsupported(r, chart.Kind)
	}

	buf.WriteString(`</svg>`)
	return buf.Bytes(), nil
}

func (r *SVGRenderer) bars(buf *bytes.Buffer, bar *view.BarChart, options *OutputOptions) {
	series := bar.Series
	if len(series) == 0 {
		return
	}

	const top, bottom, side = 50.0, 60.0, 40.0
	plotHeight := options.Height - top - bottom
	slot := (options.Width - 2*side) / float64(len(series))
	maxTotal := series[len(series)-1].Total // ascending order

	for i, p := range series {
		h := p.Total / maxTotal * plotHeight
		x := side + float64(i)*slot + slot*0.1
		y := top + plotHeight - h
		buf.WriteString(fmt.Sprintf(`<rect x="%g" y="%g" width="%g" height="%g" fill="%s"/>
`, x, y, slot*0.8, h, accentColor))
		buf.WriteString(fmt.Sprintf(`<text x="%g" y="%g" font-family="sans-serif" font-size="%g" fill="%s" text-anchor="middle">%g</text>
`, x+slot*0.4, y-4, options.FontSize, accentColor, p.Total))
		if options.ShowLabels {
			buf.WriteString(fmt.Sprintf(`<text x="%g" y="%g" font-family="sans-serif" font-size="%g" fill="%s" text-anchor="middle">%s</text>
`, x+slot*0.4, top+plotHeight+options.FontSize+4, options.FontSize, accentColor, escape(p.Location)))
		}
	}
}

func (r *SVGRenderer) nodeLink(buf *bytes.Buffer, nl *view.NodeLinkDiagram, options *OutputOptions) {
	g := nl.Graph
	const margin = 50.0

	for _, e := range g.Edges {
		if e.IsLoop() {
			continue
		}
		a, errA := g.NodeByID(e.Source)
		b, errB := g.NodeByID(e.Target)
		if errA != nil || errB != nil {
			continue
		}
		buf.WriteString(fmt.Sprintf(`<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-width="0.5"/>
`, toCanvas(a.X, options.Width, margin), toCanvas(a.Y, options.Height, margin),
			toCanvas(b.X, options.Width, margin), toCanvas(b.Y, options.Height, margin), edgeColor))
	}

	for _, n := range g.Nodes {
		cx := toCanvas(n.X, options.Width, margin)
		cy := toCanvas(n.Y, options.Height, margin)
		radius := nodeRadius(options.NodeSize, n.Degree)
		buf.WriteString(fmt.Sprintf(`<circle cx="%g" cy="%g" r="%g" fill="%s" stroke="%s" stroke-width="1"><title>%s: %d</title></circle>
`, cx, cy, radius, accentColor, backgroundColor, escape(n.Label), n.Degree))

		if options.ShowLabels {
			buf.WriteString(fmt.Sprintf(`<text x="%g" y="%g" font-family="sans-serif" font-size="%g" fill="#cccccc" text-anchor="middle">%s</text>
`, cx, cy+radius+options.FontSize, options.FontSize, escape(n.Label)))
		}
	}
}
