package models

import "strings"

// ChartKind names one of the derived charts shown next to the map
type ChartKind string

const (
	Bar      ChartKind = "bar"
	Sankey   ChartKind = "sankey"
	NodeLink ChartKind = "node-link"
)

// ParseChartKind accepts the short tokens as well as the dashboard labels
// ("Bar Chart", "Sankey Diagram", "Node-link Diagram").
func ParseChartKind(s string) (ChartKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bar", "bar chart":
		return Bar, true
	case "sankey", "sankey diagram":
		return Sankey, true
	case "node-link", "nodelink", "node-link diagram":
		return NodeLink, true
	}
	return "", false
}

// ChartKinds lists the supported kinds in menu order
func ChartKinds() []ChartKind {
	return []ChartKind{Bar, Sankey, NodeLink}
}
