package model

import (
	"sort"
	"time"
)

// FlatRow is the tabular form of one RawSubmission: a cell per column plus
// the parsed submission timestamp. Exactly one FlatRow is derived per
// submission, in input order.
type FlatRow struct {
	Cells map[string]Value

	// Order lists the row's columns in the order the flattener produced
	// them, so schemas and exports stay deterministic. Optional: when nil,
	// column order falls back to sorted names.
	Order []string

	// SubmissionTime is the parsed submission timestamp. TimeValid is false
	// when the raw timestamp was missing or unparseable; such rows never
	// pass a date filter.
	SubmissionTime time.Time
	TimeValid      bool
}

// Get returns the cell for the given column, or the typed Null when the
// column is absent from this row.
func (r FlatRow) Get(column string) Value {
	if v, ok := r.Cells[column]; ok {
		return v
	}
	return Null
}

// Has reports whether the row carries a cell for the column, null included.
func (r FlatRow) Has(column string) bool {
	_, ok := r.Cells[column]
	return ok
}

func (r FlatRow) columnsInOrder() []string {
	if r.Order != nil {
		return r.Order
	}
	cols := make([]string, 0, len(r.Cells))
	for c := range r.Cells {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
