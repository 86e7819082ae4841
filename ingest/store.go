// Package ingest loads the flow tables that back every chart.
//
// The three tables are read once at startup, concurrently, from local files
// or http(s) URLs. The resulting Dataset is never modified afterwards.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TFMV/refugeeflow/models"
)

// ErrNoSource is returned when the origin-destination table is not configured
var ErrNoSource = errors.New("no origin-destination source configured")

// Sources names where each table is read from. Inbound and Outbound are
// optional: when unset, the origin-destination table stands in for them,
// since grouping it by destination or origin gives the same totals.
type Sources struct {
	Pairs    string `mapstructure:"od"`
	Inbound  string `mapstructure:"inbound"`
	Outbound string `mapstructure:"outbound"`
}

// Opener opens a table source for reading
type Opener func(ctx context.Context, src string) (io.ReadCloser, error)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// Open reads a local file, or fetches src when it is an http(s) URL
func Open(ctx context.Context, src string) (io.ReadCloser, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", src, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL %s: %w", src, err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", src, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", src, resp.Status)
	}
	return resp.Body, nil
}

// Load reads all configured tables with Open
func Load(ctx context.Context, src Sources) (*models.Dataset, error) {
	return LoadWith(ctx, src, Open)
}

// LoadWith reads all configured tables concurrently using open
func LoadWith(ctx context.Context, src Sources, open Opener) (*models.Dataset, error) {
	if src.Pairs == "" {
		return nil, ErrNoSource
	}

	var ds models.Dataset
	g, ctx := errgroup.WithContext(ctx)

	load := func(kind TableKind, location string, dst *[]models.FlowRecord) {
		if location == "" {
			return
		}
		g.Go(func() error {
			start := time.Now()
			rc, err := open(ctx, location)
			if err != nil {
				return err
			}
			defer rc.Close()

			records, err := ParseCSV(rc, kind)
			if err != nil {
				return fmt.Errorf("failed to parse %s table from %s: %w", kind, location, err)
			}
			*dst = records
			slog.Info("loaded flow table",
				"table", string(kind), "source", location,
				"rows", len(records), "duration", time.Since(start))
			return nil
		})
	}

	load(Pairs, src.Pairs, &ds.Pairs)
	load(Inbound, src.Inbound, &ds.Inbound)
	load(Outbound, src.Outbound, &ds.Outbound)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if src.Inbound == "" {
		ds.Inbound = ds.Pairs
	}
	if src.Outbound == "" {
		ds.Outbound = ds.Pairs
	}
	return &ds, nil
}
