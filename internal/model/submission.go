package model

// RawSubmission is one record from the form-collection API, exactly as
// decoded from the JSON "results" array. Keys are field paths (the API uses
// slash-separated group prefixes, e.g. "Identification/Province"); values are
// strings, numbers, nulls, lists, or nested objects for form groups.
// Connectors produce RawSubmissions; the flattener consumes them.
type RawSubmission map[string]any
