package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	d, ok := ParseDirection(" Inbound ")
	assert.True(t, ok)
	assert.Equal(t, Inbound, d)

	d, ok = ParseDirection("outbound")
	assert.True(t, ok)
	assert.Equal(t, Outbound, d)

	_, ok = ParseDirection("sideways")
	assert.False(t, ok)
	assert.False(t, Direction("").Valid())
}

func TestParseChartKind(t *testing.T) {
	cases := map[string]ChartKind{
		"bar":               Bar,
		"Bar Chart":         Bar,
		"sankey":            Sankey,
		"Sankey Diagram":    Sankey,
		"node-link":         NodeLink,
		"Node-link Diagram": NodeLink,
	}
	for in, want := range cases {
		got, ok := ParseChartKind(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseChartKind("pie")
	assert.False(t, ok)
}

func TestValidYear(t *testing.T) {
	assert.True(t, ValidYear(2000))
	assert.True(t, ValidYear(2016))
	assert.False(t, ValidYear(1999))
	assert.False(t, ValidYear(2017))
}

func TestFlowRecord(t *testing.T) {
	r := FlowRecord{Origin: "SY", Destination: "DE", Year: 2015, Count: 10}
	assert.Equal(t, "DE", r.Endpoint(Inbound))
	assert.Equal(t, "SY", r.Endpoint(Outbound))
	assert.True(t, r.HasCount())

	r.Count = math.NaN()
	assert.False(t, r.HasCount())
}

func TestFlowGraph(t *testing.T) {
	t.Run("duplicate and reverse pairs collapse", func(t *testing.T) {
		g := NewFlowGraph()
		assert.True(t, g.AddEdge("A", "B"))
		assert.False(t, g.AddEdge("A", "B"))
		assert.False(t, g.AddEdge("B", "A"))

		assert.Equal(t, 2, g.NodeCount())
		assert.Equal(t, 1, g.EdgeCount())
		assert.True(t, g.HasEdge("B", "A"))

		a, err := g.NodeByID("A")
		require.NoError(t, err)
		assert.Equal(t, 1, a.Degree)
	})

	t.Run("self loop is kept once and counts toward degree", func(t *testing.T) {
		g := NewFlowGraph()
		g.AddEdge("A", "A")
		g.AddEdge("A", "A")
		g.AddEdge("A", "B")

		assert.Equal(t, 2, g.EdgeCount())
		assert.True(t, g.Edges[0].IsLoop())
		assert.Equal(t, []CountryCode{"A", "B"}, g.Neighbors("A"))

		a, _ := g.NodeByID("A")
		assert.Equal(t, 2, a.Degree)
	})

	t.Run("first-seen order", func(t *testing.T) {
		g := NewFlowGraph()
		g.AddEdge("C", "A")
		g.AddEdge("B", "C")
		ids := []CountryCode{}
		for _, n := range g.Nodes {
			ids = append(ids, n.ID)
		}
		assert.Equal(t, []CountryCode{"C", "A", "B"}, ids)
	})

	t.Run("unknown node", func(t *testing.T) {
		g := NewFlowGraph()
		_, err := g.NodeByID("ZZ")
		assert.Error(t, err)
	})

	t.Run("positions", func(t *testing.T) {
		g := NewFlowGraph()
		g.AddNode("A")
		g.SetPosition("A", Position{X: 1, Y: 2})
		g.SetPosition("missing", Position{X: 9, Y: 9})
		assert.Equal(t, Layout{"A": {X: 1, Y: 2}}, g.Positions())

		big := g.FilterNodes(func(n *Node) bool { return n.X > 0 })
		assert.Len(t, big, 1)
	})
}

func TestFlowGraphZeroValue(t *testing.T) {
	var g FlowGraph
	assert.True(t, g.AddNode("SY"))
	assert.True(t, g.AddEdge("SY", "TR"))
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.Nodes[0].Degree)

	empty := FlowGraph{}
	assert.False(t, empty.HasEdge("A", "B"))
	_, err := empty.NodeByID("A")
	assert.Error(t, err)
}

func TestFlowGraphDecoded(t *testing.T) {
	var g FlowGraph
	data := `{"nodes":[{"id":"SY","label":"Syria","x":0.5,"y":-0.5},{"id":"TR","label":"TR"}],
		"edges":[{"source":"SY","target":"TR"}]}`
	require.NoError(t, json.Unmarshal([]byte(data), &g))

	assert.True(t, g.HasEdge("TR", "SY"))
	n, err := g.NodeByID("SY")
	require.NoError(t, err)
	assert.Equal(t, "Syria", n.Label)
	assert.Equal(t, 1, n.Degree)
	assert.Equal(t, Position{X: 0.5, Y: -0.5}, g.Positions()["SY"])

	assert.True(t, g.AddEdge("SY", "LB"))
	assert.Equal(t, 3, g.NodeCount())
}

func TestAggregatedSeriesSum(t *testing.T) {
	s := AggregatedSeries{{Location: "A", Total: 1.5}, {Location: "B", Total: 2.5}}
	assert.InDelta(t, 4.0, s.Sum(), 1e-9)
}
