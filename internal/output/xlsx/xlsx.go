// Package xlsx serializes the working set as a spreadsheet. This is a pure
// serialization of rows and columns; styling belongs to consumers.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/crimson-sun/fieldview/internal/model"
)

const sheetName = "Submissions"

// Encode writes rows as an xlsx workbook with a header row of column names.
// Numeric cells stay numeric so spreadsheet formulas keep working.
func Encode(w io.Writer, rows []model.FlatRow, schema model.Schema) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), sheetName)

	for i, col := range schema {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return fmt.Errorf("xlsx: header %s: %w", col, err)
		}
	}

	for r, row := range rows {
		for c, col := range schema {
			v := row.Get(col)
			if v.IsNull() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("xlsx: %w", err)
			}
			var err2 error
			if n, ok := v.AsNumber(); ok {
				err2 = f.SetCellValue(sheetName, cell, n)
			} else {
				err2 = f.SetCellValue(sheetName, cell, v.Display())
			}
			if err2 != nil {
				return fmt.Errorf("xlsx: cell %s: %w", cell, err2)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

// Output writes the working set to an xlsx file.
type Output struct {
	path string
}

// New creates an xlsx file output.
func New(path string) *Output {
	return &Output{path: path}
}

func (o *Output) Write(_ context.Context, rows []model.FlatRow, schema model.Schema) error {
	f, err := os.Create(o.path)
	if err != nil {
		return fmt.Errorf("xlsx output: %w", err)
	}
	if err := Encode(f, rows, schema); err != nil {
		f.Close()
		return fmt.Errorf("xlsx output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("xlsx output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
