package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/TFMV/refugeeflow/view"
)

// DOTRenderer outputs Graphviz DOT format
type DOTRenderer struct{}

// Name returns the name of the renderer
func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

// ContentType returns the MIME type of the rendered output
func (r *DOTRenderer) ContentType() string {
	return "text/vnd.graphviz"
}

// Render writes the node-link graph as an undirected graph with pinned
// positions, or the Sankey flows as a weighted digraph
func (r *DOTRenderer) Render(chart *view.Chart, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer

	switch {
	case chart.NodeLink != nil:
		g := chart.NodeLink.Graph
		buf.WriteString("graph G {\n")
		r.header(&buf, chart, options)
		for _, n := range g.Nodes {
			buf.WriteString(fmt.Sprintf("  %s [label=%s, degree=%d, pos=\"%f,%f!\"];\n",
				quote(n.ID), quote(n.Label), n.Degree,
				toCanvas(n.X, options.Width, 50)/72.0, toCanvas(n.Y, options.Height, 50)/72.0))
		}
		for _, e := range g.Edges {
			buf.WriteString(fmt.Sprintf("  %s -- %s;\n", quote(e.Source), quote(e.Target)))
		}

	case chart.Sankey != nil:
		s := chart.Sankey
		buf.WriteString("digraph G {\n")
		r.header(&buf, chart, options)
		used := make(map[int]bool)
		for _, l := range s.Links {
			used[l.Source] = true
			used[l.Target] = true
		}
		for id, label := range s.Nodes {
			if used[id] {
				buf.WriteString(fmt.Sprintf("  n%d [label=%s];\n", id, quote(label)))
			}
		}
		for _, l := range s.Links {
			buf.WriteString(fmt.Sprintf("  n%d -> n%d [weight=%g, label=\"%g\"];\n", l.Source, l.Target, l.Value, l.Value))
		}

	default:
		return nil, unsupported(r, chart.Kind)
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func (r *DOTRenderer) header(buf *bytes.Buffer, chart *view.Chart, options *OutputOptions) {
	buf.WriteString(fmt.Sprintf("  graph [label=%s, bgcolor=\"%s\", fontcolor=\"%s\", size=\"%f,%f\"];\n",
		quote(chart.Title), options.Background, accentColor, options.Width/72.0, options.Height/72.0))
	buf.WriteString(fmt.Sprintf("  node [shape=circle, fontname=\"Arial\", fontsize=%g, color=\"%s\", fontcolor=\"%s\"];\n",
		options.FontSize, accentColor, accentColor))
	buf.WriteString(fmt.Sprintf("  edge [color=\"%s\"];\n", edgeColor))
}

// quote produces a DOT string literal
func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
