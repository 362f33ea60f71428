// Package filter applies the date-range and categorical filters that carve
// the working set out of the flattened rows.
package filter

import (
	"time"

	"github.com/crimson-sun/fieldview/internal/model"
)

// DateRange is an inclusive submission-time window. The zero DateRange
// matches everything.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two calendar dates, expanding a set end
// date to the last instant of that day. A zero date leaves that bound
// unconstrained.
func NewDateRange(start, end time.Time) DateRange {
	if !end.IsZero() {
		end = EndOfDay(end)
	}
	return DateRange{Start: start, End: end}
}

// EndOfDay returns the last instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// IsZero reports whether the range is unset.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Contains reports whether t lies within [Start, End], inclusive on both
// ends. An unset bound does not constrain.
func (r DateRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// Categorical restricts one field to a set of allowed values. An empty set
// means no restriction; a null or missing field value never satisfies a
// non-empty set.
type Categorical struct {
	Field   string
	Allowed map[string]struct{}
}

// NewCategorical builds a categorical filter over the given values.
func NewCategorical(field string, values ...string) Categorical {
	c := Categorical{Field: field, Allowed: make(map[string]struct{}, len(values))}
	for _, v := range values {
		c.Allowed[v] = struct{}{}
	}
	return c
}

// Matches reports whether the row passes this filter.
func (c Categorical) Matches(row model.FlatRow) bool {
	if len(c.Allowed) == 0 {
		return true
	}
	cell := row.Get(c.Field)
	if cell.IsNull() {
		return false
	}
	_, ok := c.Allowed[cell.Display()]
	return ok
}

// Apply returns the rows passing the date range and every categorical
// filter (pure conjunction). Input order is preserved. Rows with an invalid
// submission time are out of range for any non-zero date filter.
func Apply(rows []model.FlatRow, dr DateRange, cats []Categorical) []model.FlatRow {
	out := make([]model.FlatRow, 0, len(rows))
rows:
	for _, row := range rows {
		if !dr.IsZero() {
			if !row.TimeValid || !dr.Contains(row.SubmissionTime) {
				continue
			}
		}
		for _, c := range cats {
			if !c.Matches(row) {
				continue rows
			}
		}
		out = append(out, row)
	}
	return out
}
