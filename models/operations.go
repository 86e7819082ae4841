package models

// NewFlowGraph creates an empty flow graph
func NewFlowGraph() *FlowGraph {
	return &FlowGraph{
		Nodes:     []Node{},
		Edges:     []Edge{},
		index:     make(map[CountryCode]int),
		neighbors: make(map[CountryCode]map[CountryCode]struct{}),
		edgeSet:   make(map[[2]CountryCode]struct{}),
	}
}

// AddNode adds a node unless one with the same ID already exists.
// It reports whether the node was added. The zero FlowGraph is ready to use.
func (g *FlowGraph) AddNode(id CountryCode) bool {
	g.init()
	if _, ok := g.index[id]; ok {
		return false
	}
	g.index[id] = len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{ID: id, Label: id})
	g.neighbors[id] = make(map[CountryCode]struct{})
	return true
}

// AddEdge links a and b, adding missing endpoints first. Reverse and
// repeated pairs collapse onto the existing edge. It reports whether a new
// edge was created.
func (g *FlowGraph) AddEdge(a, b CountryCode) bool {
	g.AddNode(a)
	g.AddNode(b)

	key := edgeKey(a, b)
	if _, ok := g.edgeSet[key]; ok {
		return false
	}
	g.edgeSet[key] = struct{}{}
	g.Edges = append(g.Edges, Edge{Source: a, Target: b})

	g.neighbors[a][b] = struct{}{}
	g.neighbors[b][a] = struct{}{}
	g.Nodes[g.index[a]].Degree = len(g.neighbors[a])
	g.Nodes[g.index[b]].Degree = len(g.neighbors[b])
	return true
}

// SetPosition stores the coordinate of a node
func (g *FlowGraph) SetPosition(id CountryCode, p Position) {
	if i, ok := g.IndexOf(id); ok {
		g.Nodes[i].X = p.X
		g.Nodes[i].Y = p.Y
	}
}

// init builds the lookup maps of a zero or decoded graph from its exported
// Nodes and Edges
func (g *FlowGraph) init() {
	if g.index != nil {
		return
	}
	nodes, edges := g.Nodes, g.Edges
	g.Nodes, g.Edges = make([]Node, 0, len(nodes)), make([]Edge, 0, len(edges))
	g.index = make(map[CountryCode]int, len(nodes))
	g.neighbors = make(map[CountryCode]map[CountryCode]struct{}, len(nodes))
	g.edgeSet = make(map[[2]CountryCode]struct{}, len(edges))

	for _, n := range nodes {
		if g.AddNode(n.ID) {
			last := &g.Nodes[len(g.Nodes)-1]
			last.Label, last.X, last.Y = n.Label, n.X, n.Y
		}
	}
	for _, e := range edges {
		g.AddEdge(e.Source, e.Target)
	}
}

// edgeKey orders the endpoints so {a,b} and {b,a} share a key
func edgeKey(a, b CountryCode) [2]CountryCode {
	if b < a {
		a, b = b, a
	}
	return [2]CountryCode{a, b}
}
