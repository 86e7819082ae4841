// Package physics computes 2D layouts for flow graphs.
//
// All layouts are deterministic: the same nodes and edges in the same order
// always produce bit-identical coordinates. Iteration is capped by
// Options.MaxIterations, so a layout always terminates even when it never
// reaches the convergence tolerance.
package physics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/TFMV/refugeeflow/graph"
	"github.com/TFMV/refugeeflow/models"
	"github.com/TFMV/refugeeflow/telemetry"
)

var tracer = otel.Tracer("github.com/TFMV/refugeeflow/physics")

// LayoutAlgorithm defines an interface for layout algorithms
type LayoutAlgorithm interface {
	Initialize(g *models.FlowGraph)
	Step() bool // Returns true if stable, false if needs more steps
	Apply(g *models.FlowGraph)
	GetName() string
}

// Options holds the simulation parameters
type Options struct {
	Algorithm      string  `mapstructure:"algorithm"`
	Width          float64 `mapstructure:"width"`
	Height         float64 `mapstructure:"height"`
	MaxIterations  int     `mapstructure:"max_iterations"`
	Tolerance      float64 `mapstructure:"tolerance"` // stop once no node moves further than this in a step
	Gravity        float64 `mapstructure:"gravity"`
	RepulsionForce float64 `mapstructure:"repulsion_force"`
	SpringConstant float64 `mapstructure:"spring_constant"`
	DampingFactor  float64 `mapstructure:"damping_factor"`
	Cooling        float64 `mapstructure:"cooling"`
	Seed           int64   `mapstructure:"seed"`
}

// DefaultOptions returns the parameters used by the node-link view
func DefaultOptions() Options {
	return Options{
		Algorithm:      "force",
		Width:          800,
		Height:         600,
		MaxIterations:  500,
		Tolerance:      0.01,
		Gravity:        0.05,
		RepulsionForce: 100.0,
		SpringConstant: 1.0,
		DampingFactor:  0.9,
		Cooling:        0.95,
		Seed:           20002016,
	}
}

// Validate checks that the options describe a bounded simulation
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("layout area must be positive, got %gx%g", o.Width, o.Height)
	}
	if o.MaxIterations <= 0 {
		return fmt.Errorf("layout max iterations must be positive, got %d", o.MaxIterations)
	}
	if o.Tolerance < 0 {
		return fmt.Errorf("layout tolerance must not be negative, got %g", o.Tolerance)
	}
	if o.DampingFactor <= 0 || o.DampingFactor > 1 {
		return fmt.Errorf("layout damping factor must be in (0, 1], got %g", o.DampingFactor)
	}
	if o.Cooling <= 0 || o.Cooling > 1 {
		return fmt.Errorf("layout cooling must be in (0, 1], got %g", o.Cooling)
	}
	return nil
}

// Stats describes how a layout run ended
type Stats struct {
	Algorithm       string  `json:"algorithm"`
	Iterations      int     `json:"iterations"`
	Converged       bool    `json:"converged"`
	MaxDisplacement float64 `json:"max_displacement"`
}

// Force vector components
type force struct {
	fx, fy float64
}

// Position coordinates
type position struct {
	x, y float64
}

// Velocity vector components
type velocity struct {
	vx, vy float64
}

// ForceDirectedLayout implements a Fruchterman-Reingold force-directed layout
// with springs on edges and repulsion between every pair of nodes. Each step
// costs O(n²) in the number of nodes.
type ForceDirectedLayout struct {
	opts            Options
	positions       []position
	velocities      []velocity
	forces          []force
	links           [][2]int // edge endpoints as node indices, loops excluded
	temperature     float64
	k               float64 // optimal distance
	iterations      int
	stable          bool
	maxDisplacement float64
}

// NewForceDirectedLayout creates a new force-directed layout
func NewForceDirectedLayout(opts Options) *ForceDirectedLayout {
	return &ForceDirectedLayout{opts: opts}
}

// GetName returns the name of the layout algorithm
func (fd *ForceDirectedLayout) GetName() string {
	return "force"
}

// Initialize places the nodes on a circle and caches the edge list
func (fd *ForceDirectedLayout) Initialize(g *models.FlowGraph) {

	n := len(g.Nodes)
	fd.positions = initialPositions(n, fd.opts)
	fd.velocities = make([]velocity, n)
	fd.forces = make([]force, n)
	fd.iterations = 0
	fd.stable = n == 0
	fd.maxDisplacement = 0

	// Optimal distance between nodes
	if n > 0 {
		fd.k = math.Sqrt(fd.opts.Width * fd.opts.Height / float64(n))
	}
	fd.temperature = math.Min(fd.opts.Width, fd.opts.Height) / 10

	fd.links = fd.links[:0]
	for i, nbrs := range graph.Adjacency(g) {
		for _, j := range nbrs {
			if i < j {
				fd.links = append(fd.links, [2]int{i, j})
			}
		}
	}
}

// Step performs one iteration of the layout algorithm
func (fd *ForceDirectedLayout) Step() bool {

	if fd.iterations >= fd.opts.MaxIterations || fd.stable {
		return true
	}

	for i := range fd.forces {
		fd.forces[i] = force{}
	}

	centerX := fd.opts.Width / 2
	centerY := fd.opts.Height / 2
	minSide := math.Min(fd.opts.Width, fd.opts.Height)

	for i := range fd.positions {
		pos1 := fd.positions[i]

		// Gravity is stronger the further a node drifts from the centre
		dx := centerX - pos1.x
		dy := centerY - pos1.y
		distance := math.Max(0.1, math.Sqrt(dx*dx+dy*dy))
		gravityFactor := fd.opts.Gravity * (distance / minSide)
		fd.forces[i].fx += dx * gravityFactor
		fd.forces[i].fy += dy * gravityFactor

		for j := i + 1; j < len(fd.positions); j++ {
			pos2 := fd.positions[j]

			// Vector from node j to node i
			dx := pos1.x - pos2.x
			dy := pos1.y - pos2.y
			distance := math.Sqrt(dx*dx + dy*dy)
			if distance < 1e-9 {
				// Coincident nodes separate along a direction fixed by their indices
				angle := float64(i*31+j*17) * 0.618
				dx, dy, distance = math.Cos(angle), math.Sin(angle), 1
			}
			dx /= distance
			dy /= distance
			distance = math.Max(0.1, distance)

			// F = k^2 / distance
			repulsiveForce := (fd.k * fd.k / distance) * fd.opts.RepulsionForce / 100.0

			fd.forces[i].fx += dx * repulsiveForce
			fd.forces[i].fy += dy * repulsiveForce
			fd.forces[j].fx -= dx * repulsiveForce
			fd.forces[j].fy -= dy * repulsiveForce
		}
	}

	for _, link := range fd.links {
		i, j := link[0], link[1]
		pos1 := fd.positions[i]
		pos2 := fd.positions[j]

		// Vector from node i to node j
		dx := pos2.x - pos1.x
		dy := pos2.y - pos1.y
		distance := math.Max(0.1, math.Sqrt(dx*dx+dy*dy))

		// F = distance^2 / k, equal to the repulsion at distance k when
		// SpringConstant is 1 and RepulsionForce is 100
		attractiveForce := distance * distance / fd.k * fd.opts.SpringConstant

		dx /= distance
		dy /= distance
		fd.forces[i].fx += dx * attractiveForce
		fd.forces[i].fy += dy * attractiveForce
		fd.forces[j].fx -= dx * attractiveForce
		fd.forces[j].fy -= dy * attractiveForce
	}

	// Limit every force by the temperature (simulated annealing)
	padding := math.Min(fd.k*0.5, minSide*0.05)
	maxDisplacement := 0.0
	for i, f := range fd.forces {
		magnitude := math.Sqrt(f.fx*f.fx + f.fy*f.fy)
		if magnitude > 0 {
			scale := math.Min(magnitude, fd.temperature) / magnitude
			f.fx *= scale
			f.fy *= scale
		}

		v := fd.velocities[i]
		v.vx = (v.vx + f.fx) * fd.opts.DampingFactor
		v.vy = (v.vy + f.fy) * fd.opts.DampingFactor
		fd.velocities[i] = v

		old := fd.positions[i]
		pos := position{x: old.x + v.vx, y: old.y + v.vy}
		pos.x = math.Max(padding, math.Min(fd.opts.Width-padding, pos.x))
		pos.y = math.Max(padding, math.Min(fd.opts.Height-padding, pos.y))
		fd.positions[i] = pos

		moved := math.Hypot(pos.x-old.x, pos.y-old.y)
		maxDisplacement = math.Max(maxDisplacement, moved)
	}

	fd.temperature *= fd.opts.Cooling
	fd.maxDisplacement = maxDisplacement
	fd.stable = maxDisplacement < fd.opts.Tolerance
	fd.iterations++
	return fd.stable || fd.iterations >= fd.opts.MaxIterations
}

// Apply updates node positions in the graph
func (fd *ForceDirectedLayout) Apply(g *models.FlowGraph) {
	applyPositions(g, fd.positions)
}

// Stats reports the progress of the simulation
func (fd *ForceDirectedLayout) Stats() Stats {
	return Stats{
		Algorithm:       fd.GetName(),
		Iterations:      fd.iterations,
		Converged:       fd.stable,
		MaxDisplacement: fd.maxDisplacement,
	}
}

// CircularLayout places nodes evenly on a circle in node order. It needs a
// single step and is the cheap fallback for very large selections.
type CircularLayout struct {
	opts      Options
	positions []position
	done      bool
}

// NewCircularLayout creates a new circular layout
func NewCircularLayout(opts Options) *CircularLayout {
	return &CircularLayout{opts: opts}
}

// GetName returns the name of the layout algorithm
func (cl *CircularLayout) GetName() string {
	return "circle"
}

// Initialize arranges the nodes in a circle
func (cl *CircularLayout) Initialize(g *models.FlowGraph) {
	cl.positions = circlePositions(len(g.Nodes), cl.opts)
	cl.done = false
}

// Step finishes immediately
func (cl *CircularLayout) Step() bool {
	cl.done = true
	return true
}

// Apply updates node positions in the graph
func (cl *CircularLayout) Apply(g *models.FlowGraph) {
	applyPositions(g, cl.positions)
}

// Stats reports the progress of the layout
func (cl *CircularLayout) Stats() Stats {
	iterations := 0
	if cl.done {
		iterations = 1
	}
	return Stats{Algorithm: cl.GetName(), Iterations: iterations, Converged: cl.done}
}

// GetLayoutAlgorithm returns a layout algorithm by name
func GetLayoutAlgorithm(name string, opts Options) (LayoutAlgorithm, error) {
	switch strings.ToLower(name) {
	case "", "force":
		return NewForceDirectedLayout(opts), nil
	case "circle", "circular":
		return NewCircularLayout(opts), nil
	default:
		return nil, fmt.Errorf("unknown layout algorithm: %s", name)
	}
}

// Compute lays out g, writes the coordinates into its nodes and returns them
// rescaled so the layout is centred on the origin and fits in [-1, 1].
// An empty graph returns an empty layout without running the simulation.
func Compute(ctx context.Context, g *models.FlowGraph, opts Options) (models.Layout, Stats, error) {
	_, span := tracer.Start(ctx, "physics.Compute")
	defer span.End()

	if err := opts.Validate(); err != nil {
		return nil, Stats{}, err
	}
	algorithm, err := GetLayoutAlgorithm(opts.Algorithm, opts)
	if err != nil {
		return nil, Stats{}, err
	}

	span.SetAttributes(
		attribute.String("layout.algorithm", algorithm.GetName()),
		attribute.Int("graph.nodes", len(g.Nodes)),
		attribute.Int("graph.edges", len(g.Edges)),
	)

	if len(g.Nodes) == 0 {
		return models.Layout{}, Stats{Algorithm: algorithm.GetName(), Converged: true}, nil
	}

	start := time.Now()
	algorithm.Initialize(g)
	for i := 0; i < opts.MaxIterations; i++ {
		if algorithm.Step() {
			break
		}
	}
	algorithm.Apply(g)

	var stats Stats
	if s, ok := algorithm.(interface{ Stats() Stats }); ok {
		stats = s.Stats()
	}
	Normalize(g)

	telemetry.RecordLayout(stats.Algorithm, stats.Iterations, stats.Converged, time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("layout.iterations", stats.Iterations),
		attribute.Bool("layout.converged", stats.Converged),
	)
	if !stats.Converged {
		slog.Warn("layout did not fully stabilize",
			"nodes", len(g.Nodes), "iterations", stats.Iterations,
			"max_displacement", stats.MaxDisplacement)
	}
	return g.Positions(), stats, nil
}

// Normalize recentres node coordinates on their mean and scales them so the
// largest absolute coordinate is 1. A single node ends up at the origin.
func Normalize(g *models.FlowGraph) {
	n := len(g.Nodes)
	if n == 0 {
		return
	}

	meanX, meanY := 0.0, 0.0
	for _, node := range g.Nodes {
		meanX += node.X
		meanY += node.Y
	}
	meanX /= float64(n)
	meanY /= float64(n)

	maxAbs := 0.0
	for i := range g.Nodes {
		g.Nodes[i].X -= meanX
		g.Nodes[i].Y -= meanY
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(g.Nodes[i].X), math.Abs(g.Nodes[i].Y)))
	}
	if maxAbs == 0 {
		return
	}
	for i := range g.Nodes {
		g.Nodes[i].X /= maxAbs
		g.Nodes[i].Y /= maxAbs
	}
}

// Helper functions

// circlePositions spreads n nodes evenly on a circle around the centre
func circlePositions(n int, opts Options) []position {
	out := make([]position, n)
	centerX := opts.Width / 2
	centerY := opts.Height / 2
	if n == 1 {
		out[0] = position{x: centerX, y: centerY}
		return out
	}

	radius := math.Min(opts.Width, opts.Height) * 0.4
	for i := range out {
		angle := (2 * math.Pi * float64(i)) / float64(n)
		out[i] = position{
			x: centerX + radius*math.Cos(angle),
			y: centerY + radius*math.Sin(angle),
		}
	}
	return out
}

// initialPositions starts from the circle and nudges every node with simplex
// noise from opts.Seed
func initialPositions(n int, opts Options) []position {
	out := circlePositions(n, opts)
	noise := opensimplex.New(opts.Seed)
	jitter := math.Min(opts.Width, opts.Height) * 0.02
	for i := range out {
		t := float64(i) * 0.37
		out[i].x += noise.Eval2(t, 0.5) * jitter
		out[i].y += noise.Eval2(t, 17.5) * jitter
	}
	return out
}

func applyPositions(g *models.FlowGraph, positions []position) {
	for i := range g.Nodes {
		if i >= len(positions) {
			break
		}
		g.Nodes[i].X = positions[i].x
		g.Nodes[i].Y = positions[i].y
	}
}
