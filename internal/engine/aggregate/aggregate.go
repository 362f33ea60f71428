// Package aggregate computes the working-set metrics and the value-count
// series the dashboard's charts and filter controls are built from.
package aggregate

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/crimson-sun/fieldview/internal/model"
)

// Summarize computes the row count and the sum of the total-price column.
// Null cells contribute zero. When the column is absent from the schema
// entirely, TotalKnown is false: a schema mismatch, not a zero-sum result.
func Summarize(rows []model.FlatRow, schema model.Schema, totalColumn string) model.Summary {
	s := model.Summary{
		Count:      len(rows),
		TotalKnown: schema.Has(totalColumn),
	}
	if !s.TotalKnown {
		return s
	}
	for _, row := range rows {
		if n, ok := row.Get(totalColumn).AsNumber(); ok {
			s.Total += n
		}
	}
	return s
}

// ValueCount is one slice of a value-frequency series.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts tallies the non-null values of a field, ordered by descending
// count with ties broken by value so the series is deterministic.
func ValueCounts(rows []model.FlatRow, field string) []ValueCount {
	counts := make(map[string]int)
	for _, row := range rows {
		cell := row.Get(field)
		if cell.IsNull() {
			continue
		}
		counts[cell.Display()]++
	}

	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Distinct returns the sorted distinct non-null values of a field. Sorting
// is collation-aware so accented labels order naturally in filter controls.
func Distinct(rows []model.FlatRow, field string, tag language.Tag) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range rows {
		cell := row.Get(field)
		if cell.IsNull() {
			continue
		}
		v := cell.Display()
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	collate.New(tag).SortStrings(out)
	return out
}
