package model

// Summary holds the working-set metrics: row count and the sum of the
// total-price column. Null cells contribute zero to Total.
type Summary struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`

	// TotalKnown is false when the total-price column is absent from the
	// schema entirely. That is a schema mismatch, distinct from a
	// legitimate zero sum.
	TotalKnown bool `json:"total_known"`
}
