// Package aggregate filters flow records by year, direction and map
// selection, and reduces them to chart-ready series.
package aggregate

import (
	"math"
	"sort"

	"github.com/TFMV/refugeeflow/models"
)

// Selection is the set of locations picked on the map. An empty selection
// means every location.
type Selection map[models.CountryCode]struct{}

// NewSelection builds a selection from a list of locations
func NewSelection(locations ...models.CountryCode) Selection {
	s := make(Selection, len(locations))
	for _, l := range locations {
		if l == "" {
			continue
		}
		s[l] = struct{}{}
	}
	return s
}

// Contains reports whether loc is selected. Every location is selected by an
// empty selection.
func (s Selection) Contains(loc models.CountryCode) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[loc]
	return ok
}

// Filter keeps the records of the given year whose direction endpoint is in
// the selection. An out-of-range year or unknown direction yields an empty
// slice. The input is never modified.
func Filter(records []models.FlowRecord, year int, d models.Direction, sel Selection) []models.FlowRecord {
	if !models.ValidYear(year) || !d.Valid() {
		return []models.FlowRecord{}
	}

	out := make([]models.FlowRecord, 0)
	for _, r := range records {
		if r.Year != year {
			continue
		}
		if !sel.Contains(r.Endpoint(d)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Aggregate sums counts per direction endpoint over the filtered records.
// Missing counts are skipped, groups whose sum is not positive are dropped,
// and the result is sorted ascending by total with ties broken by location.
func Aggregate(records []models.FlowRecord, year int, d models.Direction, sel Selection) models.AggregatedSeries {
	return Group(Filter(records, year, d, sel), d)
}

// Group reduces already filtered records to a series keyed by the direction
// endpoint
func Group(records []models.FlowRecord, d models.Direction) models.AggregatedSeries {
	sums := make(map[models.CountryCode]float64)
	for _, r := range records {
		key := r.Endpoint(d)
		if !r.HasCount() {
			continue
		}
		sums[key] += r.Count
	}
	return toSeries(sums)
}

func toSeries(sums map[models.CountryCode]float64) models.AggregatedSeries {
	series := make(models.AggregatedSeries, 0, len(sums))
	for loc, total := range sums {
		if total <= 0 || math.IsNaN(total) {
			continue
		}
		series = append(series, models.SeriesPoint{Location: loc, Total: total})
	}

	sort.Slice(series, func(i, j int) bool {
		if series[i].Total != series[j].Total {
			return series[i].Total < series[j].Total
		}
		return series[i].Location < series[j].Location
	})
	return series
}
