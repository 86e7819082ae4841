package models

import (
	"fmt"
	"sort"
)

// NodeFilter is a function type used to filter nodes in queries
type NodeFilter func(node *Node) bool

// NodeCount returns the number of nodes
func (g *FlowGraph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of edges
func (g *FlowGraph) EdgeCount() int {
	return len(g.Edges)
}

// IndexOf returns the position of a node in g.Nodes
func (g *FlowGraph) IndexOf(id CountryCode) (int, bool) {
	g.init()
	i, ok := g.index[id]
	return i, ok
}

// NodeByID returns a node by its ID
func (g *FlowGraph) NodeByID(id CountryCode) (*Node, error) {
	g.init()
	if i, ok := g.index[id]; ok {
		return &g.Nodes[i], nil
	}
	return nil, fmt.Errorf("node with ID %s not found", id)
}

// HasEdge reports whether a and b are linked, in either order
func (g *FlowGraph) HasEdge(a, b CountryCode) bool {
	g.init()
	_, ok := g.edgeSet[edgeKey(a, b)]
	return ok
}

// Neighbors returns the distinct neighbours of a node in lexicographic order.
// A node with a self loop lists itself.
func (g *FlowGraph) Neighbors(id CountryCode) []CountryCode {
	g.init()
	set := g.neighbors[id]
	result := make([]CountryCode, 0, len(set))
	for n := range set {
		result = append(result, n)
	}
	sort.Strings(result)
	return result
}

// FilterNodes returns nodes that match the provided filter function
func (g *FlowGraph) FilterNodes(filter NodeFilter) []Node {
	var result []Node
	for i := range g.Nodes {
		if filter(&g.Nodes[i]) {
			result = append(result, g.Nodes[i])
		}
	}
	return result
}

// Positions returns the stored node coordinates as a Layout
func (g *FlowGraph) Positions() Layout {
	layout := make(Layout, len(g.Nodes))
	for _, n := range g.Nodes {
		layout[n.ID] = Position{X: n.X, Y: n.Y}
	}
	return layout
}
