package model

// Schema is the ordered union of column names over a row set. Columns appear
// in first-seen order; rows missing a column read as Null there.
type Schema []string

// Has reports whether the schema contains the column.
func (s Schema) Has(column string) bool {
	for _, c := range s {
		if c == column {
			return true
		}
	}
	return false
}

// Select returns the subset of s named in columns, preserving schema order.
// Unknown names are ignored. A nil or empty selection returns s unchanged.
func (s Schema) Select(columns []string) Schema {
	if len(columns) == 0 {
		return s
	}
	want := make(map[string]bool, len(columns))
	for _, c := range columns {
		want[c] = true
	}
	out := make(Schema, 0, len(columns))
	for _, c := range s {
		if want[c] {
			out = append(out, c)
		}
	}
	return out
}

// BuildSchema computes the column union over rows in first-seen order.
func BuildSchema(rows []FlatRow) Schema {
	var schema Schema
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, c := range row.columnsInOrder() {
			if !seen[c] {
				seen[c] = true
				schema = append(schema, c)
			}
		}
	}
	return schema
}
