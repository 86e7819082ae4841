package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/TFMV/refugeeflow/models"
)

// ErrMissingColumn is returned when a table header lacks a required column
var ErrMissingColumn = errors.New("missing column")

// TableKind identifies which of the three flow tables is being read
type TableKind string

const (
	// Pairs is the raw origin-destination table
	Pairs TableKind = "pairs"
	// Inbound holds totals by destination
	Inbound TableKind = "inbound"
	// Outbound holds totals by origin
	Outbound TableKind = "outbound"
)

// columns holds the header positions of a flow table, -1 when absent
type columns struct {
	origin, destination, year, count, code int
}

func findColumns(header []string) columns {
	cols := columns{origin: -1, destination: -1, year: -1, count: -1, code: -1}
	for i, col := range header {
		colLower := strings.ToLower(strings.TrimSpace(col))
		colLower = strings.TrimPrefix(colLower, "\ufeff")
		switch colLower {
		case "origin", "source", "from", "src":
			cols.origin = i
		case "destination", "dest", "target", "to", "dst":
			cols.destination = i
		case "year":
			cols.year = i
		case "refugees", "count", "value", "weight":
			cols.count = i
		case "code", "iso", "iso3":
			cols.code = i
		}
	}
	return cols
}

func (c columns) check(kind TableKind) error {
	var missing []string
	if c.year < 0 {
		missing = append(missing, "year")
	}
	if c.count < 0 {
		missing = append(missing, "refugees")
	}
	if (kind == Pairs || kind == Outbound) && c.origin < 0 {
		missing = append(missing, "origin")
	}
	if (kind == Pairs || kind == Inbound) && c.destination < 0 {
		missing = append(missing, "destination")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s table needs %s", ErrMissingColumn, kind, strings.Join(missing, ", "))
	}
	return nil
}

// ParseCSV reads a flow table. Columns are matched by header name in any
// order. Rows whose year is not an integer are skipped, as are OD rows with
// a blank origin or destination; a count that is missing or not numeric is
// stored as NaN and left out of every sum.
func ParseCSV(r io.Reader, kind TableKind) ([]models.FlowRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s table is empty", ErrMissingColumn, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	cols := findColumns(header)
	if err := cols.check(kind); err != nil {
		return nil, err
	}

	records := make([]models.FlowRecord, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row: %w", err)
		}

		year, err := strconv.Atoi(field(row, cols.year))
		if err != nil {
			continue
		}

		rec := models.FlowRecord{
			Origin:      field(row, cols.origin),
			Destination: field(row, cols.destination),
			Code:        field(row, cols.code),
			Year:        year,
			Count:       parseCount(field(row, cols.count)),
		}
		if kind == Pairs && (rec.Origin == "" || rec.Destination == "") {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseCount converts a count cell, returning NaN when it is not a number
func parseCount(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
