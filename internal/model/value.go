package model

import "strconv"

// Kind discriminates the scalar types a FlatRow cell can hold.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
)

// Value is an explicit optional scalar. A missing or unparseable field is a
// typed Null, never a runtime lookup failure.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
}

// Null is the zero Value.
var Null = Value{}

// String returns a string-kinded Value.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Number returns a number-kinded Value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// IsNull reports whether the value is the typed null.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// AsNumber returns the numeric value and whether the value is a number.
func (v Value) AsNumber() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// Display renders the value for tables, exports, and filter matching.
// Null renders as the empty string.
func (v Value) Display() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return ""
	}
}
