// Package flatten converts raw API submissions into flat tabular rows.
// The hard part lives here: splitting text-encoded composite fields,
// joining multi-select lists, and coercing types with null-on-failure
// tolerance so a single malformed field never loses a row.
package flatten

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/crimson-sun/fieldview/internal/model"
)

// Shape declares one composite field: a raw field whose string value is a
// single space-delimited record mapped positionally onto sub-columns.
type Shape struct {
	Field   string   // raw field holding the delimited record
	Columns []string // positional sub-column names
	Numeric []string // sub-columns parsed as floats; parse failure yields Null
}

func (s Shape) numeric(column string) bool {
	for _, c := range s.Numeric {
		if c == column {
			return true
		}
	}
	return false
}

// Option configures a Flattener.
type Option func(*Flattener)

// WithShapes sets the composite field shapes to split.
func WithShapes(shapes ...Shape) Option {
	return func(f *Flattener) { f.shapes = shapes }
}

// WithTimeField sets the raw field parsed as the submission timestamp.
// Default: "_submission_time".
func WithTimeField(name string) Option {
	return func(f *Flattener) { f.timeField = name }
}

// WithListDelimiter sets the join delimiter for list-valued fields.
// Default: ", ".
func WithListDelimiter(d string) Option {
	return func(f *Flattener) { f.delim = d }
}

// Flattener converts RawSubmissions to FlatRows. Construct once, reuse;
// it is stateless across calls and safe for concurrent use.
type Flattener struct {
	shapes    []Shape
	timeField string
	delim     string
}

// New creates a Flattener.
func New(opts ...Option) *Flattener {
	f := &Flattener{
		timeField: "_submission_time",
		delim:     ", ",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WarningKind classifies batch-level flatten warnings.
type WarningKind string

const (
	// WarnMissingField: a declared composite or timestamp field never
	// appeared in the batch. Dependent columns are simply absent.
	WarnMissingField WarningKind = "missing_field"
	// WarnBadTimestamp: some rows carried an unparseable timestamp and are
	// treated as out of range by date filters.
	WarnBadTimestamp WarningKind = "bad_timestamp"
)

// Warning is a batch-level degradation notice. Warnings never abort a batch.
type Warning struct {
	Kind  WarningKind
	Field string
	Count int // affected rows; 0 for batch-wide conditions
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnBadTimestamp:
		return fmt.Sprintf("%d row(s) with unparseable %s", w.Count, w.Field)
	default:
		return fmt.Sprintf("field %q absent from every submission", w.Field)
	}
}

// Result is a flattened batch: one row per submission, in input order, plus
// the column union and any degradation warnings.
type Result struct {
	Rows     []model.FlatRow
	Schema   model.Schema
	Warnings []Warning
}

// Flatten converts the batch. Cardinality and order are preserved exactly:
// every submission yields one row, malformed fields degrade to nulls.
func (f *Flattener) Flatten(raws []model.RawSubmission) Result {
	rows := make([]model.FlatRow, 0, len(raws))
	seenFields := make(map[string]bool)
	badTimestamps := 0

	for _, raw := range raws {
		row := model.FlatRow{Cells: make(map[string]model.Value, len(raw))}

		for _, key := range sortedKeys(raw) {
			f.addField(&row, key, raw[key], seenFields)
		}

		if cell, ok := row.Cells[f.timeField]; ok && !cell.IsNull() {
			if ts, err := parseTime(cell.Display()); err == nil {
				row.SubmissionTime = ts
				row.TimeValid = true
			} else {
				badTimestamps++
			}
		}

		rows = append(rows, row)
	}

	return Result{
		Rows:     rows,
		Schema:   model.BuildSchema(rows),
		Warnings: f.warnings(len(raws), seenFields, badTimestamps),
	}
}

// addField converts one raw field into one or more cells on the row.
func (f *Flattener) addField(row *model.FlatRow, key string, value any, seen map[string]bool) {
	switch v := value.(type) {
	case map[string]any:
		// Nested form group: flatten with dotted paths.
		for _, sub := range sortedKeys(v) {
			f.addField(row, key+"."+sub, v[sub], seen)
		}
		return
	case []any:
		f.setCell(row, key, model.String(joinList(v, f.delim)))
	case string:
		f.setCell(row, key, model.String(v))
	case float64:
		f.setCell(row, key, model.Number(v))
	case bool:
		f.setCell(row, key, model.String(strconv.FormatBool(v)))
	case nil:
		f.setCell(row, key, model.Null)
	default:
		f.setCell(row, key, model.String(fmt.Sprintf("%v", v)))
	}
	seen[key] = true

	if shape, ok := f.shapeFor(key); ok {
		f.splitComposite(row, shape)
	}
}

// splitComposite expands a composite cell into its positional sub-columns.
// Short records leave trailing columns null; extra tokens are ignored;
// non-numeric tokens in numeric columns become null, never an error.
func (f *Flattener) splitComposite(row *model.FlatRow, shape Shape) {
	cell := row.Get(shape.Field)
	if cell.Kind != model.KindString {
		return
	}

	tokens := strings.Split(cell.Str, " ")
	for i, column := range shape.Columns {
		out := model.Null
		if i < len(tokens) && tokens[i] != "" {
			if shape.numeric(column) {
				if n, err := strconv.ParseFloat(tokens[i], 64); err == nil {
					out = model.Number(n)
				}
			} else {
				out = model.String(tokens[i])
			}
		}
		f.setCell(row, column, out)
	}
}

func (f *Flattener) setCell(row *model.FlatRow, column string, v model.Value) {
	if _, exists := row.Cells[column]; !exists {
		row.Order = append(row.Order, column)
	}
	row.Cells[column] = v
}

func (f *Flattener) shapeFor(field string) (Shape, bool) {
	for _, s := range f.shapes {
		if s.Field == field {
			return s, true
		}
	}
	return Shape{}, false
}

func (f *Flattener) warnings(total int, seen map[string]bool, badTimestamps int) []Warning {
	var warnings []Warning
	if total == 0 {
		return nil
	}
	for _, shape := range f.shapes {
		if !seen[shape.Field] {
			warnings = append(warnings, Warning{Kind: WarnMissingField, Field: shape.Field})
		}
	}
	if !seen[f.timeField] {
		warnings = append(warnings, Warning{Kind: WarnMissingField, Field: f.timeField})
	}
	if badTimestamps > 0 {
		warnings = append(warnings, Warning{Kind: WarnBadTimestamp, Field: f.timeField, Count: badTimestamps})
	}
	return warnings
}

// joinList stringifies list elements and joins them. Structured elements are
// stringified whole; there is no recursive flattening inside lists.
func joinList(items []any, delim string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			parts[i] = v
		case float64:
			parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
		case nil:
			parts[i] = ""
		default:
			parts[i] = fmt.Sprintf("%v", v)
		}
	}
	return strings.Join(parts, delim)
}

// timeFormats are tried in order. The API emits RFC 3339 with and without
// fractional seconds or zone.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
