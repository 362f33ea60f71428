package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/fieldview/internal/engine/aggregate"
	"github.com/crimson-sun/fieldview/internal/geo"
	"github.com/crimson-sun/fieldview/internal/pipeline"
	"golang.org/x/text/language"
)

var (
	summaryCharts bool
	summaryPoints bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print summary metrics for the filtered working set",
	Long: `Fetches and filters submissions, then prints the summary metrics as
JSON: row count, total, and whether the total column was present. With
--charts the per-field value counts are included; with --points the
GeoJSON point collection is.`,
	RunE: runSummary,
}

func init() {
	addFilterFlags(summaryCmd)
	summaryCmd.Flags().BoolVar(&summaryCharts, "charts", false, "include value counts for the configured chart fields")
	summaryCmd.Flags().BoolVar(&summaryPoints, "points", false, "include the GeoJSON point collection")
}

func runSummary(cmd *cobra.Command, args []string) error {
	dr, cats, err := parseFilterArgs()
	if err != nil {
		return err
	}

	conn, err := buildConnector()
	if err != nil {
		return err
	}

	p := pipeline.New(conn, buildEngine(), nil, logger)
	res, err := p.Run(cmd.Context(), connectorConfig(), dr, cats, nil)
	if err != nil {
		return err
	}

	report := map[string]any{
		"summary": res.Summary,
		"empty":   res.Empty(),
	}

	if summaryCharts {
		charts := make(map[string][]aggregate.ValueCount, len(cfg.Summary.ChartFields))
		for _, field := range cfg.Summary.ChartFields {
			charts[field] = aggregate.ValueCounts(res.Working, field)
		}
		report["charts"] = charts
	}
	if summaryPoints {
		g := cfg.Geo
		report["points"] = geo.Points(res.Working, g.LatColumn, g.LonColumn, g.LabelField)
	}
	if len(cfg.Filters.Fields) > 0 {
		locale := language.Make(cfg.Summary.Locale)
		options := make(map[string][]string, len(cfg.Filters.Fields))
		for _, ff := range cfg.Filters.Fields {
			options[ff.Field] = aggregate.Distinct(res.All, ff.Field, locale)
		}
		report["filter_options"] = options
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
