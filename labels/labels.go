// Package labels assigns stable dense integer ids to country labels.
//
// An Encoder is built once from the full origin-destination table and shared
// read-only for the life of the process; the Sankey diagram uses its ids as
// node indices so they never shift between interactions.
package labels

import (
	"errors"
	"fmt"
	"sort"

	"github.com/TFMV/refugeeflow/models"
)

var (
	// ErrUnknownLabel is returned when encoding a label that was not present
	// when the encoder was built
	ErrUnknownLabel = errors.New("unknown label")
	// ErrUnknownID is returned when decoding an id outside [0, Len())
	ErrUnknownID = errors.New("unknown label id")
)

// Encoder is a bijection between country labels and [0, N).
// It is immutable after construction and safe for concurrent reads.
type Encoder struct {
	labels []models.CountryCode
	ids    map[models.CountryCode]int
}

// Build creates an encoder over the distinct non-empty codes, numbered in
// lexicographic order
func Build(codes []models.CountryCode) *Encoder {
	ids := make(map[models.CountryCode]int, len(codes))
	for _, c := range codes {
		if c == "" {
			continue
		}
		ids[c] = 0
	}

	ordered := make([]models.CountryCode, 0, len(ids))
	for c := range ids {
		ordered = append(ordered, c)
	}
	sort.Strings(ordered)

	for i, c := range ordered {
		ids[c] = i
	}
	return &Encoder{labels: ordered, ids: ids}
}

// FromDataset builds an encoder over the union of the origin and destination
// columns of the whole OD table
func FromDataset(pairs []models.FlowRecord) *Encoder {
	codes := make([]models.CountryCode, 0, 2*len(pairs))
	for _, r := range pairs {
		codes = append(codes, r.Origin, r.Destination)
	}
	return Build(codes)
}

// Encode returns the id of a label
func (e *Encoder) Encode(code models.CountryCode) (int, error) {
	id, ok := e.ids[code]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, code)
	}
	return id, nil
}

// Decode returns the label for an id
func (e *Encoder) Decode(id int) (models.CountryCode, error) {
	if id < 0 || id >= len(e.labels) {
		return "", fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	return e.labels[id], nil
}

// Labels returns all labels ordered by id
func (e *Encoder) Labels() []models.CountryCode {
	out := make([]models.CountryCode, len(e.labels))
	copy(out, e.labels)
	return out
}

// Len returns the number of labels
func (e *Encoder) Len() int {
	return len(e.labels)
}
