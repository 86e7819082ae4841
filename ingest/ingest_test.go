package ingest

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/refugeeflow/models"
)

func TestParseCSV(t *testing.T) {
	t.Run("origin-destination table", func(t *testing.T) {
		f, err := os.Open(filepath.Join("testdata", "dest.csv"))
		require.NoError(t, err)
		defer f.Close()

		records, err := ParseCSV(f, Pairs)
		require.NoError(t, err)
		require.Len(t, records, 8)

		assert.Equal(t, models.FlowRecord{Origin: "Syria", Destination: "Turkey", Year: 2015, Count: 1500}, records[0])
		assert.True(t, math.IsNaN(records[5].Count), "non-numeric count becomes NaN")
		assert.Equal(t, 0.0, records[6].Count)
	})

	t.Run("per-destination table with codes", func(t *testing.T) {
		f, err := os.Open(filepath.Join("testdata", "country_codes.csv"))
		require.NoError(t, err)
		defer f.Close()

		records, err := ParseCSV(f, Inbound)
		require.NoError(t, err)
		require.Len(t, records, 7)

		assert.Equal(t, "DEU", records[1].Code)
		assert.Equal(t, "Germany", records[1].Destination)
		assert.Empty(t, records[1].Origin)
		assert.True(t, math.IsNaN(records[4].Count), "empty count becomes NaN")
	})

	t.Run("columns in any order with aliases", func(t *testing.T) {
		data := "year,value,to,from\n2010,7,CA,US\n"
		records, err := ParseCSV(strings.NewReader(data), Pairs)
		require.NoError(t, err)
		assert.Equal(t, []models.FlowRecord{{Origin: "US", Destination: "CA", Year: 2010, Count: 7}}, records)
	})

	t.Run("rows with a bad year are skipped", func(t *testing.T) {
		data := "Origin,Destination,Year,Refugees\nA,B,twenty,1\nA,B,2001,2\n"
		records, err := ParseCSV(strings.NewReader(data), Pairs)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 2001, records[0].Year)
	})

	t.Run("short rows leave fields empty", func(t *testing.T) {
		data := "Origin,Destination,Year,Refugees\nA,B,2001\n"
		records, err := ParseCSV(strings.NewReader(data), Pairs)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, math.IsNaN(records[0].Count))
	})

	t.Run("od rows with a blank endpoint are skipped", func(t *testing.T) {
		data := "Origin,Destination,Year,Refugees\nSyria,Germany,2015,300\n,Germany,2015,10\nIraq, ,2015,5\n"
		records, err := ParseCSV(strings.NewReader(data), Pairs)
		require.NoError(t, err)
		assert.Equal(t, []models.FlowRecord{{Origin: "Syria", Destination: "Germany", Year: 2015, Count: 300}}, records)
	})

	t.Run("missing columns", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("Destination,Year,Refugees\n"), Pairs)
		assert.ErrorIs(t, err, ErrMissingColumn)
		assert.Contains(t, err.Error(), "origin")

		_, err = ParseCSV(strings.NewReader("Destination,Year,Refugees\n"), Inbound)
		assert.NoError(t, err)

		_, err = ParseCSV(strings.NewReader("Destination,Year,Refugees\n"), Outbound)
		assert.ErrorIs(t, err, ErrMissingColumn)

		_, err = ParseCSV(strings.NewReader(""), Pairs)
		assert.ErrorIs(t, err, ErrMissingColumn)
	})
}

func TestLoadWith(t *testing.T) {
	tables := map[string]string{
		"od":  "Origin,Destination,Year,Refugees\nA,B,2001,5\n",
		"in":  "Destination,CODE,Year,Refugees\nB,BBB,2001,5\n",
		"out": "Origin,Year,Refugees\nA,2001,5\n",
	}
	open := func(_ context.Context, src string) (io.ReadCloser, error) {
		data, ok := tables[src]
		if !ok {
			return nil, errors.New("no such table")
		}
		return io.NopCloser(strings.NewReader(data)), nil
	}

	t.Run("all three tables", func(t *testing.T) {
		ds, err := LoadWith(context.Background(), Sources{Pairs: "od", Inbound: "in", Outbound: "out"}, open)
		require.NoError(t, err)
		assert.Len(t, ds.Pairs, 1)
		assert.Equal(t, "BBB", ds.Inbound[0].Code)
		assert.Equal(t, "A", ds.Outbound[0].Origin)
	})

	t.Run("pairs stand in for missing tables", func(t *testing.T) {
		ds, err := LoadWith(context.Background(), Sources{Pairs: "od"}, open)
		require.NoError(t, err)
		assert.Equal(t, ds.Pairs, ds.Inbound)
		assert.Equal(t, ds.Pairs, ds.Outbound)
	})

	t.Run("pairs source is required", func(t *testing.T) {
		_, err := LoadWith(context.Background(), Sources{Inbound: "in"}, open)
		assert.ErrorIs(t, err, ErrNoSource)
	})

	t.Run("any failing table fails the load", func(t *testing.T) {
		_, err := LoadWith(context.Background(), Sources{Pairs: "od", Inbound: "missing"}, open)
		assert.Error(t, err)
	})
}

func TestOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dest.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("Origin,Destination,Year,Refugees\nA,B,2001,5\n"))
	}))
	defer srv.Close()

	ds, err := Load(context.Background(), Sources{Pairs: srv.URL + "/dest.csv"})
	require.NoError(t, err)
	assert.Len(t, ds.Pairs, 1)

	_, err = Open(context.Background(), srv.URL+"/missing.csv")
	assert.Error(t, err)

	_, err = Open(context.Background(), filepath.Join("testdata", "nope.csv"))
	assert.Error(t, err)

	rc, err := Open(context.Background(), filepath.Join("testdata", "dest.csv"))
	require.NoError(t, err)
	rc.Close()
}
