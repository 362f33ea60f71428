package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crimson-sun/fieldview/internal/config"
	"github.com/crimson-sun/fieldview/internal/connector"
	"github.com/crimson-sun/fieldview/internal/engine"
	"github.com/crimson-sun/fieldview/internal/engine/filter"
	"github.com/crimson-sun/fieldview/internal/engine/flatten"
	"github.com/crimson-sun/fieldview/internal/logging"

	// Register connector implementations.
	_ "github.com/crimson-sun/fieldview/internal/connector/kobo"
	_ "github.com/crimson-sun/fieldview/internal/connector/static"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Filter flags shared by data commands
	startDate   string
	endDate     string
	filterFlags []string
	columnsFlag []string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fieldview",
	Short: "fieldview - survey submission dashboard pipeline",
	Long: `fieldview fetches survey submissions from a form API, flattens them
into tabular rows, applies date and categorical filters, and exposes the
result as summaries, chart series, map points, and spreadsheet exports.

Configuration comes from an optional YAML file plus FIELDVIEW_* environment
variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := logging.ParseLevel(cfg.Logging.Level)
		if verbose {
			level = zap.DebugLevel
		}
		logger, err = logging.New(level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(providersCmd)
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&startDate, "start", "", "start of date window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "end of date window, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&filterFlags, "filter", nil, "categorical filter as field=value, repeatable")
	cmd.Flags().StringSliceVar(&columnsFlag, "columns", nil, "columns to include, in schema order")
}

func buildEngine() *engine.Engine {
	shapes := make([]flatten.Shape, 0, len(cfg.Flatten.Composites))
	for _, c := range cfg.Flatten.Composites {
		shapes = append(shapes, flatten.Shape{
			Field:   c.Field,
			Columns: c.Columns,
			Numeric: c.Numeric,
		})
	}
	fl := flatten.New(
		flatten.WithShapes(shapes...),
		flatten.WithTimeField(cfg.Flatten.TimeField),
		flatten.WithListDelimiter(cfg.Flatten.ListDelimiter),
	)
	return engine.New(fl, cfg.Summary.TotalColumn, engine.WithDedupKey(cfg.Flatten.DedupField))
}

func buildConnector() (connector.Connector, error) {
	ctor, err := connector.Get(cfg.Connector.Provider)
	if err != nil {
		return nil, err
	}
	return ctor(), nil
}

func connectorConfig() connector.Config {
	return connector.Config{
		Provider: cfg.Connector.Provider,
		Endpoint: cfg.Connector.Endpoint,
		APIToken: cfg.Connector.APIToken,
		Timeout:  time.Duration(cfg.Connector.Timeout) * time.Second,
		Extra:    cfg.Connector.Extra,
	}
}

// parseFilterArgs turns --start/--end/--filter flags into engine filters.
// --filter values are field=value pairs; repeating a field builds a
// multi-select for that field.
func parseFilterArgs() (filter.DateRange, []filter.Categorical, error) {
	var start, end time.Time
	if startDate != "" {
		t, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return filter.DateRange{}, nil, fmt.Errorf("invalid --start %q: expected YYYY-MM-DD", startDate)
		}
		start = t
	}
	if endDate != "" {
		t, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return filter.DateRange{}, nil, fmt.Errorf("invalid --end %q: expected YYYY-MM-DD", endDate)
		}
		end = t
	}

	byField := map[string][]string{}
	var order []string
	for _, f := range filterFlags {
		field, value, ok := strings.Cut(f, "=")
		if !ok || field == "" {
			return filter.DateRange{}, nil, fmt.Errorf("invalid --filter %q: expected field=value", f)
		}
		if _, seen := byField[field]; !seen {
			order = append(order, field)
		}
		byField[field] = append(byField[field], value)
	}

	cats := make([]filter.Categorical, 0, len(order))
	for _, field := range order {
		cats = append(cats, filter.NewCategorical(field, byField[field]...))
	}
	return filter.NewDateRange(start, end), cats, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
