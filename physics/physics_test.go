package physics

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/refugeeflow/graph"
	"github.com/TFMV/refugeeflow/models"
)

func starGraph() *models.FlowGraph {
	return graph.Build([]models.FlowRecord{
		{Origin: "SY", Destination: "TR"},
		{Origin: "SY", Destination: "LB"},
		{Origin: "SY", Destination: "JO"},
		{Origin: "SY", Destination: "DE"},
		{Origin: "AF", Destination: "DE"},
		{Origin: "AF", Destination: "PK"},
		{Origin: "AF", Destination: "IR"},
	})
}

func TestCompute(t *testing.T) {
	ctx := context.Background()

	t.Run("empty graph short-circuits", func(t *testing.T) {
		layout, stats, err := Compute(ctx, graph.Build(nil), DefaultOptions())
		require.NoError(t, err)
		assert.NotNil(t, layout)
		assert.Empty(t, layout)
		assert.Equal(t, 0, stats.Iterations)
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		first, _, err := Compute(ctx, starGraph(), DefaultOptions())
		require.NoError(t, err)
		second, _, err := Compute(ctx, starGraph(), DefaultOptions())
		require.NoError(t, err)

		require.Len(t, first, 8)
		for id, p := range first {
			q := second[id]
			assert.Equal(t, math.Float64bits(p.X), math.Float64bits(q.X), id)
			assert.Equal(t, math.Float64bits(p.Y), math.Float64bits(q.Y), id)
		}
	})

	t.Run("coordinates are finite and fit the unit box", func(t *testing.T) {
		g := starGraph()
		layout, _, err := Compute(ctx, g, DefaultOptions())
		require.NoError(t, err)

		maxAbs := 0.0
		for _, p := range layout {
			assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y))
			assert.LessOrEqual(t, math.Abs(p.X), 1.0+1e-9)
			assert.LessOrEqual(t, math.Abs(p.Y), 1.0+1e-9)
			maxAbs = math.Max(maxAbs, math.Max(math.Abs(p.X), math.Abs(p.Y)))
		}
		assert.InDelta(t, 1.0, maxAbs, 1e-9)
		assert.Equal(t, layout, g.Positions())
	})

	t.Run("iteration cap bounds the run", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxIterations = 3
		opts.Tolerance = 0
		_, stats, err := Compute(ctx, starGraph(), opts)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Iterations)
		assert.False(t, stats.Converged)
	})

	t.Run("single node sits at the origin", func(t *testing.T) {
		g := graph.Build([]models.FlowRecord{{Origin: "A", Destination: "A"}})
		layout, _, err := Compute(ctx, g, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, models.Layout{"A": {X: 0, Y: 0}}, layout)
	})

	t.Run("distinct nodes do not overlap", func(t *testing.T) {
		layout, _, err := Compute(ctx, starGraph(), DefaultOptions())
		require.NoError(t, err)
		seen := map[string]string{}
		for id, p := range layout {
			key := fmt.Sprintf("%.6f,%.6f", p.X, p.Y)
			other, dup := seen[key]
			assert.False(t, dup, "%s overlaps %s", id, other)
			seen[key] = id
		}
	})

	t.Run("linked nodes sit closer than unlinked ones", func(t *testing.T) {
		g := starGraph()
		layout, _, err := Compute(ctx, g, DefaultOptions())
		require.NoError(t, err)

		var linked, unlinked []float64
		for i := range g.Nodes {
			for j := i + 1; j < len(g.Nodes); j++ {
				a, b := g.Nodes[i].ID, g.Nodes[j].ID
				d := math.Hypot(layout[a].X-layout[b].X, layout[a].Y-layout[b].Y)
				if g.HasEdge(a, b) {
					linked = append(linked, d)
				} else {
					unlinked = append(unlinked, d)
				}
			}
		}
		require.Len(t, linked, 7)
		require.Len(t, unlinked, 21)

		mean := func(xs []float64) float64 {
			sum := 0.0
			for _, x := range xs {
				sum += x
			}
			return sum / float64(len(xs))
		}
		assert.Less(t, mean(linked), 0.8*mean(unlinked))
	})

	t.Run("circular algorithm", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Algorithm = "circle"
		layout, stats, err := Compute(ctx, starGraph(), opts)
		require.NoError(t, err)
		assert.Equal(t, "circle", stats.Algorithm)
		assert.Equal(t, 1, stats.Iterations)
		assert.Len(t, layout, 8)
	})

	t.Run("invalid options", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxIterations = 0
		_, _, err := Compute(ctx, starGraph(), opts)
		assert.Error(t, err)

		opts = DefaultOptions()
		opts.Algorithm = "voronoi"
		_, _, err = Compute(ctx, starGraph(), opts)
		assert.Error(t, err)
	})
}

func TestForceDirectedLayoutStep(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxIterations = 2
	fd := NewForceDirectedLayout(opts)
	fd.Initialize(starGraph())

	assert.False(t, fd.Step())
	assert.True(t, fd.Step())
	assert.True(t, fd.Step())
	assert.Equal(t, 2, fd.Stats().Iterations)
}

func TestInitialPositionsAreSeeded(t *testing.T) {
	opts := DefaultOptions()
	a := initialPositions(5, opts)
	b := initialPositions(5, opts)
	assert.Equal(t, a, b)

	opts.Seed++
	c := initialPositions(5, opts)
	assert.NotEqual(t, a, c)
}

func TestNormalize(t *testing.T) {
	g := graph.Build([]models.FlowRecord{{Origin: "A", Destination: "B"}})
	g.SetPosition("A", models.Position{X: 100, Y: 50})
	g.SetPosition("B", models.Position{X: 300, Y: 50})
	Normalize(g)

	assert.Equal(t, models.Layout{"A": {X: -1, Y: 0}, "B": {X: 1, Y: 0}}, g.Positions())
}

func TestGetLayoutAlgorithm(t *testing.T) {
	a, err := GetLayoutAlgorithm("", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "force", a.GetName())

	a, err = GetLayoutAlgorithm("Circular", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "circle", a.GetName())
}
