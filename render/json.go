package render

import (
	"encoding/json"
	"fmt"

	"github.com/TFMV/refugeeflow/models"
	"github.com/TFMV/refugeeflow/view"
)

// JSONRenderer outputs a plotly-compatible figure
type JSONRenderer struct{}

// Name returns the name of the renderer
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// ContentType returns the MIME type of the rendered output
func (r *JSONRenderer) ContentType() string {
	return "application/json"
}

// Figure is a plotly figure: a list of traces and a layout
type Figure struct {
	Data   []map[string]any `json:"data"`
	Layout map[string]any   `json:"layout"`
}

// Render creates a JSON figure for the chart
func (r *JSONRenderer) Render(chart *view.Chart, options *OutputOptions) ([]byte, error) {
	fig, err := BuildFigure(chart)
	if err != nil {
		return nil, err
	}
	if options != nil && options.Pretty {
		return json.MarshalIndent(fig, "", "  ")
	}
	return json.Marshal(fig)
}

// BuildFigure converts a chart into plotly traces styled like the dashboard
func BuildFigure(chart *view.Chart) (*Figure, error) {
	fig := &Figure{Layout: baseLayout(chart.Title)}

	switch {
	case chart.Bar != nil:
		fig.Data = []map[string]any{barTrace(chart.Bar.Series)}
	case chart.Sankey != nil:
		fig.Data = []map[string]any{sankeyTrace(chart.Sankey)}
	case chart.NodeLink != nil:
		fig.Data = nodeLinkTraces(chart.NodeLink.Graph)
		fig.Layout["showlegend"] = false
		fig.Layout["hovermode"] = "closest"
		hidden := map[string]any{"showgrid": false, "zeroline": false, "showticklabels": false}
		fig.Layout["xaxis"] = hidden
		fig.Layout["yaxis"] = hidden
	default:
		return nil, fmt.Errorf("chart %s has no data", chart.ID)
	}
	return fig, nil
}

func baseLayout(title string) map[string]any {
	return map[string]any{
		"title":         map[string]any{"text": title, "font": map[string]any{"color": accentColor}},
		"paper_bgcolor": backgroundColor,
		"plot_bgcolor":  backgroundColor,
		"font":          map[string]any{"color": accentColor},
		"xaxis":         map[string]any{"tickfont": map[string]any{"color": accentColor}, "gridcolor": gridColor},
		"yaxis":         map[string]any{"tickfont": map[string]any{"color": accentColor}, "gridcolor": gridColor},
		"margin":        map[string]any{"t": 75, "r": 50, "b": 100, "l": 50},
	}
}

func barTrace(series models.AggregatedSeries) map[string]any {
	x := make([]string, len(series))
	y := make([]float64, len(series))
	for i, p := range series {
		x[i] = p.Location
		y[i] = p.Total
	}
	return map[string]any{
		"type":         "bar",
		"x":            x,
		"y":            y,
		"text":         y,
		"textposition": "outside",
		"marker": map[string]any{
			"color":   accentColor,
			"opacity": 1,
			"line":    map[string]any{"width": 0},
		},
	}
}

func sankeyTrace(s *view.SankeyDiagram) map[string]any {
	source := make([]int, len(s.Links))
	target := make([]int, len(s.Links))
	value := make([]float64, len(s.Links))
	for i, l := range s.Links {
		source[i] = l.Source
		target[i] = l.Target
		value[i] = l.Value
	}
	return map[string]any{
		"type": "sankey",
		"node": map[string]any{
			"pad":       15,
			"thickness": 20,
			"line":      map[string]any{"color": "white", "width": 0.5},
			"label":     s.Nodes,
			"color":     "blue",
		},
		"link": map[string]any{
			"source": source,
			"target": target,
			"value":  value,
		},
	}
}

// nodeLinkTraces returns an edge trace (line segments separated by nulls)
// and a node trace whose colour and size follow node degree
func nodeLinkTraces(g *models.FlowGraph) []map[string]any {
	xEdge := make([]*float64, 0, 3*len(g.Edges))
	yEdge := make([]*float64, 0, 3*len(g.Edges))
	for _, e := range g.Edges {
		a, errA := g.NodeByID(e.Source)
		b, errB := g.NodeByID(e.Target)
		if errA != nil || errB != nil {
			continue
		}
		xEdge = append(xEdge, ptr(a.X), ptr(b.X), nil)
		yEdge = append(yEdge, ptr(a.Y), ptr(b.Y), nil)
	}

	n := len(g.Nodes)
	ids := make([]string, n)
	x := make([]float64, n)
	y := make([]float64, n)
	degrees := make([]int, n)
	hover := make([]string, n)
	for i, node := range g.Nodes {
		ids[i] = node.ID
		x[i] = node.X
		y[i] = node.Y
		degrees[i] = node.Degree
		hover[i] = fmt.Sprintf("%s<br>%d", node.Label, node.Degree)
	}

	edges := map[string]any{
		"type":      "scatter",
		"mode":      "lines",
		"x":         xEdge,
		"y":         yEdge,
		"hoverinfo": "none",
		"line":      map[string]any{"width": 0.5, "color": edgeColor},
	}
	nodes := map[string]any{
		"type":      "scatter",
		"mode":      "markers",
		"x":         x,
		"y":         y,
		"ids":       ids,
		"text":      degrees,
		"hoverinfo": "text",
		"hovertext": hover,
		"marker": map[string]any{
			"showscale":    true,
			"colorscale":   "Jet",
			"reversescale": true,
			"color":        degrees,
			"size":         degrees,
			"line_width":   2,
			"colorbar": map[string]any{
				"thickness": 10,
				"title":     map[string]any{"text": "Degree of Node", "side": "right"},
				"xanchor":   "left",
			},
		},
	}
	return []map[string]any{edges, nodes}
}

func ptr(v float64) *float64 {
	return &v
}
