package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crimson-sun/fieldview/internal/output"
	"github.com/crimson-sun/fieldview/internal/output/csvfile"
	"github.com/crimson-sun/fieldview/internal/output/multi"
	"github.com/crimson-sun/fieldview/internal/output/stdout"
	"github.com/crimson-sun/fieldview/internal/output/xlsx"
	"github.com/crimson-sun/fieldview/internal/pipeline"
)

var exportOut []string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch, filter, and export submissions to a spreadsheet",
	Long: `Runs one full pass: fetch submissions, flatten, apply filters, and
write the working set to each requested destination.

The destination format is inferred from the file extension (.xlsx or .csv);
with no --out, rows stream to stdout as NDJSON.

Example:
  fieldview export --start 2023-11-01 --end 2023-11-30 \
    --filter "Identification/Province=Kinshasa" \
    --columns Name_Agent,Category,TotalPrice \
    --out submissions.xlsx`,
	RunE: runExport,
}

func init() {
	addFilterFlags(exportCmd)
	exportCmd.Flags().StringArrayVarP(&exportOut, "out", "o", nil, "destination file, repeatable; extension picks the format")
}

func outputFor(path string) (output.Output, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return xlsx.New(path), nil
	case ".csv":
		return csvfile.New(path), nil
	default:
		return nil, fmt.Errorf("unsupported export extension %q: use .xlsx or .csv", filepath.Ext(path))
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	dr, cats, err := parseFilterArgs()
	if err != nil {
		return err
	}

	var out output.Output
	if len(exportOut) == 0 {
		out = stdout.New(false)
	} else {
		outs := make([]output.Output, 0, len(exportOut))
		for _, path := range exportOut {
			o, err := outputFor(path)
			if err != nil {
				return err
			}
			outs = append(outs, o)
		}
		out = multi.New(outs...)
	}

	conn, err := buildConnector()
	if err != nil {
		return err
	}

	p := pipeline.New(conn, buildEngine(), out, logger)
	defer p.Close()

	res, err := p.Run(cmd.Context(), connectorConfig(), dr, cats, columnsFlag)
	if err != nil {
		return err
	}

	logger.Info("export complete",
		zap.Int("rows", len(res.Working)),
		zap.Int("fetched", len(res.All)),
		zap.Strings("out", exportOut),
	)
	return nil
}
