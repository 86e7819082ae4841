package view

import (
	"context"
	"fmt"

	"github.com/TFMV/refugeeflow/aggregate"
)

// MapView is the choropleth shown next to the chart
type MapView struct {
	Year   int                  `json:"year"`
	Title  string               `json:"title"`
	ZMin   float64              `json:"zmin"`
	ZMax   float64              `json:"zmax"`
	Points []aggregate.MapPoint `json:"points"`
}

// Map computes the choropleth for a year from the per-destination table
func (s *Selector) Map(ctx context.Context, year int) *MapView {
	_, span := tracer.Start(ctx, "view.Map")
	defer span.End()

	return &MapView{
		Year:   year,
		Title:  fmt.Sprintf("Choropleth of immigrants per country in year %d", year),
		ZMin:   aggregate.ZMin,
		ZMax:   aggregate.ZMax,
		Points: aggregate.Choropleth(s.Data.Inbound, year),
	}
}
