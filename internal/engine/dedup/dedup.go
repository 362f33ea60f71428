// Package dedup collapses duplicate submissions in a fetched batch.
// Form APIs can return the same submission more than once when an
// enumerator edits or resubmits a record; later occurrences supersede
// earlier ones.
package dedup

import (
	"fmt"
	"strconv"

	"github.com/crimson-sun/fieldview/internal/model"
)

// Deduplicate keeps one submission per key value, the last occurrence
// winning, in first-occurrence order. Submissions without the key field
// pass through untouched. An empty key disables deduplication.
func Deduplicate(raws []model.RawSubmission, key string) []model.RawSubmission {
	if key == "" || len(raws) == 0 {
		return raws
	}

	// Ordered slice plus index map: first-occurrence order is kept while
	// later edits replace earlier payloads in place.
	byKey := make(map[string]int)
	out := make([]model.RawSubmission, 0, len(raws))

	for _, raw := range raws {
		v, ok := raw[key]
		if !ok || v == nil {
			out = append(out, raw)
			continue
		}
		k := keyString(v)

		if idx, seen := byKey[k]; seen {
			out[idx] = raw
			continue
		}
		byKey[k] = len(out)
		out = append(out, raw)
	}
	return out
}

// keyString normalizes a key value for comparison. IDs arrive as float64
// from JSON, so 42 must collide with 42.0.
func keyString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
