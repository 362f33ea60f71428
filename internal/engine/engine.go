// Package engine orchestrates the flatten -> filter -> aggregate pipeline
// that turns raw API submissions into a filtered, summarized working set.
package engine

import (
	"github.com/crimson-sun/fieldview/internal/engine/aggregate"
	"github.com/crimson-sun/fieldview/internal/engine/dedup"
	"github.com/crimson-sun/fieldview/internal/engine/filter"
	"github.com/crimson-sun/fieldview/internal/engine/flatten"
	"github.com/crimson-sun/fieldview/internal/model"
)

// Engine composes the reshaping stages. All stages are pure functions over
// immutable snapshots; the Engine is safe for concurrent use.
type Engine struct {
	flattener   *flatten.Flattener
	totalColumn string
	dedupKey    string
}

// Option configures an Engine.
type Option func(*Engine)

// WithDedupKey enables submission deduplication on the named field before
// flattening; the last occurrence of a key wins.
func WithDedupKey(field string) Option {
	return func(e *Engine) { e.dedupKey = field }
}

// New creates an Engine.
func New(fl *flatten.Flattener, totalColumn string, opts ...Option) *Engine {
	e := &Engine{
		flattener:   fl,
		totalColumn: totalColumn,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result carries everything one processing pass produces: the full flattened
// set, the working set after filters, the column union, batch warnings, and
// the summary metrics over the working set.
type Result struct {
	All      []model.FlatRow
	Working  []model.FlatRow
	Schema   model.Schema
	Warnings []flatten.Warning
	Summary  model.Summary
}

// Empty reports whether no rows survived fetching and filtering. Callers
// should surface this as an informational condition and skip dependent
// shaping rather than fail.
func (r Result) Empty() bool {
	return len(r.Working) == 0
}

// Process flattens the batch, applies the filters, and summarizes the
// working set. Row-level problems degrade to nulls or warnings; Process
// itself never fails on data.
func (e *Engine) Process(raws []model.RawSubmission, dr filter.DateRange, cats []filter.Categorical) Result {
	raws = dedup.Deduplicate(raws, e.dedupKey)
	flat := e.flattener.Flatten(raws)
	working := filter.Apply(flat.Rows, dr, cats)

	return Result{
		All:      flat.Rows,
		Working:  working,
		Schema:   flat.Schema,
		Warnings: flat.Warnings,
		Summary:  aggregate.Summarize(working, flat.Schema, e.totalColumn),
	}
}
