package fieldview

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/text/language"

	"github.com/crimson-sun/fieldview/internal/connector"
	"github.com/crimson-sun/fieldview/internal/engine"
	"github.com/crimson-sun/fieldview/internal/engine/aggregate"
	"github.com/crimson-sun/fieldview/internal/engine/filter"
	"github.com/crimson-sun/fieldview/internal/engine/flatten"
	"github.com/crimson-sun/fieldview/internal/fetchcache"
	"github.com/crimson-sun/fieldview/internal/geo"
	"github.com/crimson-sun/fieldview/internal/model"
	"github.com/crimson-sun/fieldview/internal/output"
	"github.com/crimson-sun/fieldview/internal/output/csvfile"
	"github.com/crimson-sun/fieldview/internal/output/xlsx"
	"github.com/crimson-sun/fieldview/internal/pipeline"

	// Register connector implementations.
	_ "github.com/crimson-sun/fieldview/internal/connector/kobo"
	_ "github.com/crimson-sun/fieldview/internal/connector/static"
)

// Summary is the headline metric pair over a filtered working set.
type Summary = model.Summary

// ValueCount is one slice of a categorical breakdown.
type ValueCount = aggregate.ValueCount

// Client fetches and reshapes survey submissions. Safe for concurrent use.
type Client struct {
	fetcher pipeline.Fetcher
	engine  *engine.Engine
	connCfg connector.Config
}

// New creates a Client. With no options it targets the public KoboToolbox
// API; WithAsset or WithEndpoint selects the form to load.
func New(opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctor, err := connector.Get(o.provider)
	if err != nil {
		return nil, fmt.Errorf("fieldview: %w", err)
	}

	var fetcher pipeline.Fetcher = ctor()
	if o.cache {
		fetcher = fetchcache.New(ctor())
	}

	fl := flatten.New(
		flatten.WithShapes(o.shapes...),
		flatten.WithTimeField(o.timeField),
		flatten.WithListDelimiter(o.delimiter),
	)

	return &Client{
		fetcher: fetcher,
		engine:  engine.New(fl, o.totalColumn, engine.WithDedupKey(o.dedupField)),
		connCfg: connector.Config{
			Provider: o.provider,
			Endpoint: o.endpoint,
			APIToken: o.token,
			Timeout:  o.timeout,
			Extra:    o.extra,
		},
	}, nil
}

// Query selects the working set for a Load: an inclusive date window over
// the submission timestamp and per-field value sets, combined with AND.
// Zero fields mean no constraint.
type Query struct {
	Start   time.Time
	End     time.Time
	Filters map[string][]string
}

// Load fetches a snapshot of submissions, flattens it, and applies the
// query. A transport failure returns an error and no partial data; malformed
// rows degrade to nulls and batch warnings instead.
func (c *Client) Load(ctx context.Context, q Query) (*Dataset, error) {
	raws, err := c.fetcher.Fetch(ctx, c.connCfg)
	if err != nil {
		return nil, fmt.Errorf("fieldview: %w", err)
	}

	cats := make([]filter.Categorical, 0, len(q.Filters))
	for field, values := range q.Filters {
		cats = append(cats, filter.NewCategorical(field, values...))
	}

	res := c.engine.Process(raws, filter.NewDateRange(q.Start, q.End), cats)
	return &Dataset{res: res}, nil
}

// Refresh drops the memoized snapshot so the next Load re-fetches from the
// upstream API. A no-op when caching is disabled.
func (c *Client) Refresh() {
	if inv, ok := c.fetcher.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
}

// Dataset is one filtered snapshot with its shaping operations.
type Dataset struct {
	res engine.Result
}

// Summary returns the row count and total over the working set. TotalKnown
// is false when the configured total column never appeared in the data.
func (d *Dataset) Summary() Summary { return d.res.Summary }

// Empty reports whether no rows survived filtering.
func (d *Dataset) Empty() bool { return d.res.Empty() }

// Columns returns the column union in first-seen order, or the requested
// subset of it when columns are given.
func (d *Dataset) Columns(columns ...string) []string {
	return d.res.Schema.Select(columns)
}

// Warnings returns human-readable batch degradation notices, such as a
// declared composite field that never appeared.
func (d *Dataset) Warnings() []string {
	out := make([]string, 0, len(d.res.Warnings))
	for _, w := range d.res.Warnings {
		out = append(out, w.String())
	}
	return out
}

// Rows returns the working set as column-to-value maps. Numbers stay
// numeric and nulls are nil. Pass columns to project a subset.
func (d *Dataset) Rows(columns ...string) []map[string]any {
	schema := d.res.Schema.Select(columns)
	rows := make([]map[string]any, 0, len(d.res.Working))
	for _, row := range d.res.Working {
		rows = append(rows, output.RowMap(row, schema))
	}
	return rows
}

// ValueCounts returns the categorical breakdown of one column over the
// working set, largest slice first.
func (d *Dataset) ValueCounts(field string) []ValueCount {
	return aggregate.ValueCounts(d.res.Working, field)
}

// Options returns the distinct values of a column over the full unfiltered
// snapshot, collated for the given BCP 47 locale ("fr", "en", ...). Use it
// to populate filter selectors.
func (d *Dataset) Options(field, locale string) []string {
	return aggregate.Distinct(d.res.All, field, language.Make(locale))
}

// Points shapes the working set into a GeoJSON FeatureCollection, skipping
// rows with missing coordinates.
func (d *Dataset) Points(latColumn, lonColumn, labelField string) geo.FeatureCollection {
	return geo.Points(d.res.Working, latColumn, lonColumn, labelField)
}

// Center returns the mean coordinate of the working set's points, for a
// map's initial viewport. ok is false when no row carries coordinates.
func (d *Dataset) Center(latColumn, lonColumn string) (lat, lon float64, ok bool) {
	return geo.Center(geo.Points(d.res.Working, latColumn, lonColumn, ""))
}

// ExportXLSX writes the working set to an xlsx file. Pass columns to limit
// and order the exported columns.
func (d *Dataset) ExportXLSX(path string, columns ...string) error {
	out := xlsx.New(path)
	if err := out.Write(context.Background(), d.res.Working, d.res.Schema.Select(columns)); err != nil {
		return fmt.Errorf("fieldview: %w", err)
	}
	return out.Close()
}

// ExportCSV writes the working set to a CSV file.
func (d *Dataset) ExportCSV(path string, columns ...string) error {
	out := csvfile.New(path)
	if err := out.Write(context.Background(), d.res.Working, d.res.Schema.Select(columns)); err != nil {
		return fmt.Errorf("fieldview: %w", err)
	}
	return out.Close()
}

// WriteXLSX streams the working set as an xlsx workbook, for HTTP responses
// and other writers.
func (d *Dataset) WriteXLSX(w io.Writer, columns ...string) error {
	return xlsx.Encode(w, d.res.Working, d.res.Schema.Select(columns))
}

// WriteCSV streams the working set as CSV.
func (d *Dataset) WriteCSV(w io.Writer, columns ...string) error {
	return csvfile.Encode(w, d.res.Working, d.res.Schema.Select(columns))
}
