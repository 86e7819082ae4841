package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/refugeeflow/models"
)

func sampleRecords() []models.FlowRecord {
	return []models.FlowRecord{
		{Origin: "SY", Destination: "TR", Year: 2015, Count: 1500},
		{Origin: "SY", Destination: "DE", Year: 2015, Count: 300},
		{Origin: "AF", Destination: "DE", Year: 2015, Count: 200},
		{Origin: "AF", Destination: "PK", Year: 2015, Count: 500},
		{Origin: "IQ", Destination: "DE", Year: 2014, Count: 50},
		{Origin: "ER", Destination: "SE", Year: 2015, Count: math.NaN()},
		{Origin: "SO", Destination: "KE", Year: 2015, Count: 0},
		{Origin: "SD", Destination: "TD", Year: 2015, Count: 500},
	}
}

func TestAggregate(t *testing.T) {
	t.Run("split rows are summed and zero groups dropped", func(t *testing.T) {
		records := []models.FlowRecord{
			{Origin: "US", Destination: "CA", Year: 2010, Count: 100},
			{Origin: "US", Destination: "CA", Year: 2010, Count: 50},
			{Origin: "FR", Destination: "CA", Year: 2010, Count: 0},
		}
		got := Aggregate(records, 2010, models.Inbound, nil)
		assert.Equal(t, models.AggregatedSeries{{Location: "CA", Total: 150}}, got)
	})

	t.Run("inbound groups by destination in ascending order", func(t *testing.T) {
		got := Aggregate(sampleRecords(), 2015, models.Inbound, NewSelection())
		assert.Equal(t, models.AggregatedSeries{
			{Location: "DE", Total: 500},
			{Location: "PK", Total: 500},
			{Location: "TD", Total: 500},
			{Location: "TR", Total: 1500},
		}, got)
	})

	t.Run("outbound groups by origin", func(t *testing.T) {
		got := Aggregate(sampleRecords(), 2015, models.Outbound, nil)
		assert.Equal(t, models.AggregatedSeries{
			{Location: "SD", Total: 500},
			{Location: "AF", Total: 700},
			{Location: "SY", Total: 1800},
		}, got)
	})

	t.Run("selection restricts the grouping endpoint", func(t *testing.T) {
		got := Aggregate(sampleRecords(), 2015, models.Inbound, NewSelection("DE", "KE"))
		assert.Equal(t, models.AggregatedSeries{{Location: "DE", Total: 500}}, got)

		got = Aggregate(sampleRecords(), 2015, models.Outbound, NewSelection("AF"))
		assert.Equal(t, models.AggregatedSeries{{Location: "AF", Total: 700}}, got)
	})

	t.Run("empty result is a value", func(t *testing.T) {
		got := Aggregate(sampleRecords(), 2003, models.Inbound, nil)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("out of range inputs yield empty results", func(t *testing.T) {
		assert.Empty(t, Aggregate(sampleRecords(), 1999, models.Inbound, nil))
		assert.Empty(t, Aggregate(sampleRecords(), 2015, models.Direction("up"), nil))
	})

	t.Run("negative sums are dropped", func(t *testing.T) {
		records := []models.FlowRecord{
			{Origin: "A", Destination: "B", Year: 2001, Count: -5},
			{Origin: "A", Destination: "C", Year: 2001, Count: 2},
		}
		got := Aggregate(records, 2001, models.Inbound, nil)
		assert.Equal(t, models.AggregatedSeries{{Location: "C", Total: 2}}, got)
	})
}

func TestAggregateCompleteness(t *testing.T) {
	records := sampleRecords()
	for year := models.MinYear; year <= models.MaxYear; year++ {
		for _, d := range []models.Direction{models.Inbound, models.Outbound} {
			want := 0.0
			for _, r := range records {
				if r.Year == year && r.HasCount() {
					want += r.Count
				}
			}
			got := Aggregate(records, year, d, nil)
			assert.InDelta(t, want, got.Sum(), 1e-9, "year %d direction %s", year, d)
		}
	}
}

func TestAggregateOrdering(t *testing.T) {
	records := sampleRecords()
	for _, d := range []models.Direction{models.Inbound, models.Outbound} {
		got := Aggregate(records, 2015, d, nil)
		for i, p := range got {
			assert.Greater(t, p.Total, 0.0)
			if i == 0 {
				continue
			}
			prev := got[i-1]
			ordered := prev.Total < p.Total || (prev.Total == p.Total && prev.Location < p.Location)
			assert.True(t, ordered, "%v before %v", prev, p)
		}
	}
}

func TestFilter(t *testing.T) {
	records := sampleRecords()
	before := append([]models.FlowRecord(nil), records...)

	got := Filter(records, 2015, models.Inbound, NewSelection("DE"))
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, "DE", r.Destination)
		assert.Equal(t, 2015, r.Year)
	}

	got[0].Count = 42
	assert.Equal(t, before[1].Count, records[1].Count)

	assert.Len(t, Filter(records, 2015, models.Inbound, nil), 7)
	assert.Empty(t, Filter(records, 2017, models.Inbound, nil))
}

func TestSelection(t *testing.T) {
	var empty Selection
	assert.True(t, empty.Contains("anything"))

	s := NewSelection("A", "", "B")
	assert.Len(t, s, 2)
	assert.True(t, s.Contains("A"))
	assert.False(t, s.Contains("C"))
}

func TestChoropleth(t *testing.T) {
	records := []models.FlowRecord{
		{Destination: "Germany", Code: "DEU", Year: 2015, Count: 1000},
		{Destination: "Germany", Code: "DEU", Year: 2015, Count: 9000},
		{Destination: "Chad", Code: "TCD", Year: 2015, Count: 100},
		{Destination: "Kenya", Code: "KEN", Year: 2015, Count: 0},
		{Destination: "Nowhere", Code: "", Year: 2015, Count: 10},
		{Destination: "Sweden", Code: "SWE", Year: 2015, Count: math.NaN()},
		{Destination: "Chad", Code: "TCD", Year: 2014, Count: 5},
	}

	got := Choropleth(records, 2015)
	require.Len(t, got, 2)
	assert.Equal(t, "DEU", got[0].Code)
	assert.Equal(t, "Germany", got[0].Location)
	assert.InDelta(t, 10000, got[0].Value, 1e-9)
	assert.InDelta(t, 4.0, got[0].Log10, 1e-9)
	assert.Equal(t, "TCD", got[1].Code)
	assert.InDelta(t, 2.0, got[1].Log10, 1e-9)

	assert.Empty(t, Choropleth(records, 1990))
}
