// Package models provides data structures for the refugeeflow application.
// It defines the flow records, aggregated series and graph types shared by
// the aggregation, layout and rendering packages.
package models

import (
	"math"
	"strings"
)

// Year bounds of the migration dataset (inclusive)
const (
	MinYear = 2000
	MaxYear = 2016
)

// CountryCode identifies a country. It is used both as a map key and as a
// graph node id; equality is exact string match.
type CountryCode = string

// Direction selects which endpoint of a flow record a query groups by
type Direction string

const (
	// Inbound groups flows by destination
	Inbound Direction = "inbound"
	// Outbound groups flows by origin
	Outbound Direction = "outbound"
)

// ParseDirection converts a user token into a Direction
func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Inbound:
		return Inbound, true
	case Outbound:
		return Outbound, true
	}
	return "", false
}

// Valid reports whether d is one of the known directions
func (d Direction) Valid() bool {
	return d == Inbound || d == Outbound
}

// ValidYear reports whether year lies inside the dataset range
func ValidYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// FlowRecord is a single row of a flow table.
// Count is NaN when the source value was missing or not numeric.
type FlowRecord struct {
	Origin      CountryCode `json:"origin"`
	Destination CountryCode `json:"destination"`
	Code        string      `json:"code,omitempty"` // ISO code of the row's location, if the table carries one
	Year        int         `json:"year"`
	Count       float64     `json:"count"`
}

// Endpoint returns the location a record is grouped under for direction d
func (r FlowRecord) Endpoint(d Direction) CountryCode {
	if d == Outbound {
		return r.Origin
	}
	return r.Destination
}

// HasCount reports whether the record carries a usable count
func (r FlowRecord) HasCount() bool {
	return !math.IsNaN(r.Count) && !math.IsInf(r.Count, 0)
}

// Dataset holds the three flow tables. It is immutable once loaded.
type Dataset struct {
	Inbound  []FlowRecord // totals by destination
	Outbound []FlowRecord // totals by origin
	Pairs    []FlowRecord // raw origin-destination rows
}

// Table returns the aggregate table for direction d
func (ds *Dataset) Table(d Direction) []FlowRecord {
	if d == Outbound {
		return ds.Outbound
	}
	return ds.Inbound
}

// SeriesPoint is one bar of an aggregated series
type SeriesPoint struct {
	Location CountryCode `json:"location"`
	Total    float64     `json:"total"`
}

// AggregatedSeries is ordered strictly ascending by total; every total is > 0
type AggregatedSeries []SeriesPoint

// Sum returns the sum of all totals
func (s AggregatedSeries) Sum() float64 {
	sum := 0.0
	for _, p := range s {
		sum += p.Total
	}
	return sum
}

// Node represents a country in a flow graph
type Node struct {
	ID     CountryCode `json:"id"`
	Label  string      `json:"label"`
	Degree int         `json:"degree"` // number of distinct neighbours
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
}

// Edge represents an undirected link between two countries
type Edge struct {
	Source CountryCode `json:"source"`
	Target CountryCode `json:"target"`
}

// IsLoop reports whether the edge connects a node to itself
func (e Edge) IsLoop() bool {
	return e.Source == e.Target
}

// FlowGraph is an undirected simple graph built from an OD subset.
// Nodes and Edges keep first-seen order.
type FlowGraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	index     map[CountryCode]int
	neighbors map[CountryCode]map[CountryCode]struct{}
	edgeSet   map[[2]CountryCode]struct{}
}

// Position is a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout maps every node of a graph to its coordinate
type Layout map[CountryCode]Position
