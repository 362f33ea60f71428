package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/crimson-sun/fieldview/internal/model"
	"github.com/crimson-sun/fieldview/internal/output"
)

// Output writes rows as NDJSON, one object per row in schema scope.
type Output struct {
	enc *json.Encoder
}

// New creates a stdout Output with optional pretty-printed JSON.
func New(pretty bool) *Output {
	return NewWriter(os.Stdout, pretty)
}

// NewWriter creates an Output over an arbitrary writer. Used by tests and
// by the CLI when redirecting.
func NewWriter(w io.Writer, pretty bool) *Output {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Output{enc: enc}
}

func (o *Output) Write(_ context.Context, rows []model.FlatRow, schema model.Schema) error {
	for _, row := range rows {
		if err := o.enc.Encode(output.RowMap(row, schema)); err != nil {
			return fmt.Errorf("stdout output: %w", err)
		}
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
