// Package graph builds the undirected country graph shown by the node-link
// view.
package graph

import (
	"github.com/TFMV/refugeeflow/models"
)

// Build creates a flow graph from an OD subset that was already filtered by
// year and selection. Nodes are the distinct endpoints in first-seen order
// (origin before destination). Every row contributes the unordered pair
// {origin, destination}; repeated and reversed pairs collapse to one edge,
// and a row whose origin equals its destination becomes a single loop edge.
// Rows with an empty endpoint are skipped.
func Build(subset []models.FlowRecord) *models.FlowGraph {
	g := models.NewFlowGraph()
	for _, r := range subset {
		if r.Origin == "" || r.Destination == "" {
			continue
		}
		g.AddEdge(r.Origin, r.Destination)
	}
	return g
}

// Degrees returns node degrees keyed by node id
func Degrees(g *models.FlowGraph) map[models.CountryCode]int {
	out := make(map[models.CountryCode]int, len(g.Nodes))
	for _, n := range g.Nodes {
		out[n.ID] = n.Degree
	}
	return out
}

// Adjacency returns, for every node in g.Nodes order, the indices of the
// nodes it is linked to. Self loops are omitted since they exert no force.
func Adjacency(g *models.FlowGraph) [][]int {
	adj := make([][]int, len(g.Nodes))
	for _, e := range g.Edges {
		if e.IsLoop() {
			continue
		}
		i, _ := g.IndexOf(e.Source)
		j, _ := g.IndexOf(e.Target)
		adj[i] = append(adj[i], j)
		adj[j] = append(adj[j], i)
	}
	return adj
}
