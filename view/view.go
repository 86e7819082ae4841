// Package view routes a chart request to the aggregation engine, the label
// encoder or the flow graph builder, and packages the result for rendering.
//
// A Request bundles every interaction input (chart kind, year, direction and
// map selection); Select recomputes the chart from scratch for each request
// against the shared, read-only dataset and label encoder.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/TFMV/refugeeflow/aggregate"
	"github.com/TFMV/refugeeflow/graph"
	"github.com/TFMV/refugeeflow/labels"
	"github.com/TFMV/refugeeflow/models"
	"github.com/TFMV/refugeeflow/physics"
	"github.com/TFMV/refugeeflow/telemetry"
)

var tracer = otel.Tracer("github.com/TFMV/refugeeflow/view")

// ErrUnknownChartKind is returned for a chart kind outside bar, sankey and
// node-link
var ErrUnknownChartKind = errors.New("unknown chart kind")

// Request holds the current state of every dashboard input
type Request struct {
	Kind      models.ChartKind
	Year      int
	Direction models.Direction
	Selection []models.CountryCode
}

// BarChart is the aggregated series shown as bars
type BarChart struct {
	Series models.AggregatedSeries `json:"series"`
}

// SankeyLink is one flow of the Sankey diagram, by encoder id
type SankeyLink struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Value  float64 `json:"value"`
}

// SankeyDiagram lists every known label as a node and one link per OD row
type SankeyDiagram struct {
	Nodes []models.CountryCode `json:"nodes"`
	Links []SankeyLink         `json:"links"`
}

// NodeLinkDiagram is the laid-out country graph
type NodeLinkDiagram struct {
	Graph  *models.FlowGraph `json:"graph"`
	Layout models.Layout     `json:"layout"`
	Stats  physics.Stats     `json:"stats"`
}

// Chart is the chart-ready output of one request. Exactly one of Bar,
// Sankey and NodeLink is set.
type Chart struct {
	ID        string               `json:"id"`
	Kind      models.ChartKind     `json:"kind"`
	Year      int                  `json:"year"`
	Direction models.Direction     `json:"direction"`
	Selection []models.CountryCode `json:"selection"`
	Title     string               `json:"title"`
	Bar       *BarChart            `json:"bar,omitempty"`
	Sankey    *SankeyDiagram       `json:"sankey,omitempty"`
	NodeLink  *NodeLinkDiagram     `json:"node_link,omitempty"`
}

// Empty reports whether the chart has nothing to draw
func (c *Chart) Empty() bool {
	switch {
	case c.Bar != nil:
		return len(c.Bar.Series) == 0
	case c.Sankey != nil:
		return len(c.Sankey.Links) == 0
	case c.NodeLink != nil:
		return len(c.NodeLink.Graph.Nodes) == 0
	}
	return true
}

// Selector dispatches requests. Its fields are built once at startup and
// only read afterwards, so one Selector serves concurrent requests.
type Selector struct {
	Data   *models.Dataset
	Labels *labels.Encoder
	Layout physics.Options
}

// NewSelector builds a selector and its label encoder over the dataset
func NewSelector(ds *models.Dataset, layout physics.Options) *Selector {
	return &Selector{
		Data:   ds,
		Labels: labels.FromDataset(ds.Pairs),
		Layout: layout,
	}
}

// Select computes the chart for req
func (s *Selector) Select(ctx context.Context, req Request) (*Chart, error) {
	ctx, span := tracer.Start(ctx, "view.Select")
	defer span.End()
	span.SetAttributes(
		attribute.String("chart.kind", string(req.Kind)),
		attribute.Int("chart.year", req.Year),
		attribute.String("chart.direction", string(req.Direction)),
		attribute.Int("chart.selection", len(req.Selection)),
	)

	start := time.Now()
	chart, err := s.dispatch(ctx, req)

	status := "ok"
	switch {
	case err != nil:
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case chart.Empty():
		status = "empty"
	}
	telemetry.RecordChart(string(req.Kind), status, time.Since(start).Seconds())
	slog.Debug("chart computed",
		"kind", req.Kind, "year", req.Year, "direction", req.Direction,
		"selection", len(req.Selection), "status", status, "duration", time.Since(start))
	return chart, err
}

func (s *Selector) dispatch(ctx context.Context, req Request) (*Chart, error) {
	sel := aggregate.NewSelection(req.Selection...)
	chart := &Chart{
		ID:        uuid.New().String(),
		Kind:      req.Kind,
		Year:      req.Year,
		Direction: req.Direction,
		Selection: req.Selection,
	}
	if chart.Selection == nil {
		chart.Selection = []models.CountryCode{}
	}

	switch req.Kind {
	case models.Bar:
		chart.Title = fmt.Sprintf("Refugees in year %d", req.Year)
		chart.Bar = &BarChart{
			Series: aggregate.Aggregate(s.Data.Table(req.Direction), req.Year, req.Direction, sel),
		}
		return chart, nil

	case models.Sankey:
		chart.Title = fmt.Sprintf("Migration flow between countries in the year %d", req.Year)
		subset := aggregate.Filter(s.Data.Pairs, req.Year, req.Direction, sel)
		sankey, err := s.sankey(subset)
		if err != nil {
			return nil, err
		}
		chart.Sankey = sankey
		return chart, nil

	case models.NodeLink:
		chart.Title = fmt.Sprintf("Connectivity between countries in the year %d", req.Year)
		subset := aggregate.Filter(s.Data.Pairs, req.Year, req.Direction, sel)
		g := graph.Build(subset)
		layout, stats, err := physics.Compute(ctx, g, s.Layout)
		if err != nil {
			return nil, fmt.Errorf("layout failed: %w", err)
		}
		chart.NodeLink = &NodeLinkDiagram{Graph: g, Layout: layout, Stats: stats}
		return chart, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownChartKind, req.Kind)
	}
}

// sankey encodes every row of the subset as a link. Rows with a blank
// endpoint are skipped as in graph.Build. A missing count is emitted as 0 so
// the link still shows up.
func (s *Selector) sankey(subset []models.FlowRecord) (*SankeyDiagram, error) {
	diagram := &SankeyDiagram{
		Nodes: s.Labels.Labels(),
		Links: make([]SankeyLink, 0, len(subset)),
	}
	for _, r := range subset {
		if r.Origin == "" || r.Destination == "" {
			continue
		}
		source, err := s.Labels.Encode(r.Origin)
		if err != nil {
			return nil, err
		}
		target, err := s.Labels.Encode(r.Destination)
		if err != nil {
			return nil, err
		}
		value := r.Count
		if !r.HasCount() {
			value = 0
		}
		diagram.Links = append(diagram.Links, SankeyLink{Source: source, Target: target, Value: value})
	}
	return diagram, nil
}
