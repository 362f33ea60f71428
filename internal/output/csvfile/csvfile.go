package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/crimson-sun/fieldview/internal/model"
	"github.com/crimson-sun/fieldview/internal/output"
)

// Encode writes rows as CSV: a header row of column names, then one record
// per row in schema order. Shared by the file output and the HTTP export.
func Encode(w io.Writer, rows []model.FlatRow, schema model.Schema) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(schema); err != nil {
		return fmt.Errorf("csv: header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(output.Record(row, schema)); err != nil {
			return fmt.Errorf("csv: record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Output writes the working set to a CSV file. One Write call serializes
// one complete set; the file is truncated per call so re-runs are clean.
type Output struct {
	path string
}

// New creates a CSV file output.
func New(path string) *Output {
	return &Output{path: path}
}

func (o *Output) Write(_ context.Context, rows []model.FlatRow, schema model.Schema) error {
	f, err := os.Create(o.path)
	if err != nil {
		return fmt.Errorf("csv output: %w", err)
	}
	if err := Encode(f, rows, schema); err != nil {
		f.Close()
		return fmt.Errorf("csv output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csv output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
