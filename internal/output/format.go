package output

import "github.com/crimson-sun/fieldview/internal/model"

// Record renders one row as strings in schema order. Null cells render as
// empty strings. Every writer shares this so exports stay consistent.
func Record(row model.FlatRow, schema model.Schema) []string {
	rec := make([]string, len(schema))
	for i, col := range schema {
		rec[i] = row.Get(col).Display()
	}
	return rec
}

// RowMap renders one row as a JSON-ready map in schema scope: numbers stay
// numbers, nulls stay null.
func RowMap(row model.FlatRow, schema model.Schema) map[string]any {
	m := make(map[string]any, len(schema))
	for _, col := range schema {
		cell := row.Get(col)
		switch cell.Kind {
		case model.KindNumber:
			m[col] = cell.Num
		case model.KindString:
			m[col] = cell.Str
		default:
			m[col] = nil
		}
	}
	return m
}
