package output

import (
	"context"

	"github.com/crimson-sun/fieldview/internal/model"
)

// Output defines the interface for working-set destinations. Write receives
// the full row set at once; the schema fixes column order and selection.
type Output interface {
	Write(ctx context.Context, rows []model.FlatRow, schema model.Schema) error
	Close() error
}
