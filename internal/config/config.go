package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all fieldview configuration.
type Config struct {
	Connector ConnectorConfig `yaml:"connector"`
	Flatten   FlattenConfig   `yaml:"flatten"`
	Filters   FilterConfig    `yaml:"filters"`
	Summary   SummaryConfig   `yaml:"summary"`
	Geo       GeoConfig       `yaml:"geo"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ConnectorConfig holds connector-specific settings.
type ConnectorConfig struct {
	Provider string            `yaml:"provider"`
	Endpoint string            `yaml:"endpoint"`
	APIToken string            `yaml:"api_token"`
	Timeout  int               `yaml:"timeout_seconds"`
	Extra    map[string]string `yaml:"extra"`
}

// CompositeConfig declares one composite field: a raw field whose
// space-delimited string value splits into positional sub-columns.
type CompositeConfig struct {
	Field   string   `yaml:"field"`
	Columns []string `yaml:"columns"`
	Numeric []string `yaml:"numeric"` // subset of Columns parsed as floats
}

// FlattenConfig controls how raw submissions become flat rows.
type FlattenConfig struct {
	TimeField     string            `yaml:"time_field"`
	ListDelimiter string            `yaml:"list_delimiter"`
	DedupField    string            `yaml:"dedup_field"` // empty disables deduplication
	Composites    []CompositeConfig `yaml:"composites"`
}

// FilterField maps an HTTP query parameter / CLI flag name to the flat-row
// column it filters on.
type FilterField struct {
	Param string `yaml:"param"`
	Field string `yaml:"field"`
	Label string `yaml:"label"`
}

// FilterConfig declares the categorical filter set.
type FilterConfig struct {
	Fields []FilterField `yaml:"fields"`
}

// SummaryConfig controls metric and chart-series computation.
type SummaryConfig struct {
	TotalColumn string   `yaml:"total_column"`
	ChartFields []string `yaml:"chart_fields"`
	Locale      string   `yaml:"locale"`
}

// GeoConfig names the columns feeding the map-point shaping.
type GeoConfig struct {
	LatColumn  string `yaml:"lat_column"`
	LonColumn  string `yaml:"lon_column"`
	LabelField string `yaml:"label_field"`
}

// ServerConfig holds HTTP serving settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration matching the production survey form:
// a KoboToolbox endpoint, the GPS and Sondage composites, and the four
// categorical filter fields the dashboard exposes.
func Default() Config {
	return Config{
		Connector: ConnectorConfig{
			Provider: "kobo",
			Timeout:  10,
		},
		Flatten: FlattenConfig{
			TimeField:     "_submission_time",
			ListDelimiter: ", ",
			DedupField:    "_id",
			Composites: []CompositeConfig{
				{
					Field:   "GPS",
					Columns: []string{"Latitude", "Longitude", "Altitude", "Other"},
					Numeric: []string{"Latitude", "Longitude", "Altitude"},
				},
				{
					Field:   "Sondage",
					Columns: []string{"Category", "UnitPrice", "Quantity", "TotalPrice"},
					Numeric: []string{"UnitPrice", "Quantity", "TotalPrice"},
				},
			},
		},
		Filters: FilterConfig{
			Fields: []FilterField{
				{Param: "province", Field: "Identification/Province", Label: "Province"},
				{Param: "commune", Field: "Identification/Commune", Label: "Commune"},
				{Param: "address", Field: "Identification/Adresse_PDV", Label: "Address"},
				{Param: "agent", Field: "Name_Agent", Label: "Agent name"},
			},
		},
		Summary: SummaryConfig{
			TotalColumn: "TotalPrice",
			ChartFields: []string{"Identification/Type_PDV", "Name_Agent"},
			Locale:      "fr",
		},
		Geo: GeoConfig{
			LatColumn:  "Latitude",
			LonColumn:  "Longitude",
			LabelField: "Name_Agent",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file, then applies
// FIELDVIEW_* environment overrides. A missing file is not an error;
// defaults plus environment apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Connector.Provider = getenv("FIELDVIEW_PROVIDER", cfg.Connector.Provider)
	cfg.Connector.Endpoint = getenv("FIELDVIEW_ENDPOINT", cfg.Connector.Endpoint)
	cfg.Connector.APIToken = getenv("FIELDVIEW_API_TOKEN", cfg.Connector.APIToken)
	cfg.Connector.Timeout = getenvInt("FIELDVIEW_TIMEOUT", cfg.Connector.Timeout)
	cfg.Server.Addr = getenv("FIELDVIEW_ADDR", cfg.Server.Addr)
	cfg.Logging.Level = getenv("FIELDVIEW_LOG_LEVEL", cfg.Logging.Level)

	if asset := os.Getenv("FIELDVIEW_ASSET"); asset != "" {
		if cfg.Connector.Extra == nil {
			cfg.Connector.Extra = make(map[string]string)
		}
		cfg.Connector.Extra["asset"] = asset
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
