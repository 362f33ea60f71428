package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FIELDVIEW_PROVIDER", "FIELDVIEW_ENDPOINT", "FIELDVIEW_API_TOKEN",
		"FIELDVIEW_TIMEOUT", "FIELDVIEW_ADDR", "FIELDVIEW_LOG_LEVEL",
		"FIELDVIEW_ASSET",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Connector.Provider != "kobo" {
		t.Fatalf("expected default provider 'kobo', got %q", cfg.Connector.Provider)
	}
	if cfg.Connector.Timeout != 10 {
		t.Fatalf("expected default timeout 10s, got %d", cfg.Connector.Timeout)
	}
	if cfg.Flatten.TimeField != "_submission_time" {
		t.Fatalf("expected time field '_submission_time', got %q", cfg.Flatten.TimeField)
	}
	if len(cfg.Flatten.Composites) != 2 {
		t.Fatalf("expected 2 default composites, got %d", len(cfg.Flatten.Composites))
	}
	if cfg.Flatten.Composites[0].Field != "GPS" {
		t.Fatalf("expected first composite 'GPS', got %q", cfg.Flatten.Composites[0].Field)
	}
	if len(cfg.Filters.Fields) != 4 {
		t.Fatalf("expected 4 filter fields, got %d", len(cfg.Filters.Fields))
	}
	if cfg.Summary.TotalColumn != "TotalPrice" {
		t.Fatalf("expected total column 'TotalPrice', got %q", cfg.Summary.TotalColumn)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FIELDVIEW_PROVIDER", "static")
	t.Setenv("FIELDVIEW_API_TOKEN", "tok-123")
	t.Setenv("FIELDVIEW_TIMEOUT", "25")
	t.Setenv("FIELDVIEW_ASSET", "aXYZ")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Connector.Provider != "static" {
		t.Fatalf("expected provider 'static', got %q", cfg.Connector.Provider)
	}
	if cfg.Connector.APIToken != "tok-123" {
		t.Fatalf("expected token override, got %q", cfg.Connector.APIToken)
	}
	if cfg.Connector.Timeout != 25 {
		t.Fatalf("expected timeout 25, got %d", cfg.Connector.Timeout)
	}
	if cfg.Connector.Extra["asset"] != "aXYZ" {
		t.Fatalf("expected asset extra, got %v", cfg.Connector.Extra)
	}
}

func TestLoad_BadEnvInt(t *testing.T) {
	clearEnv(t)
	t.Setenv("FIELDVIEW_TIMEOUT", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Connector.Timeout != 10 {
		t.Fatalf("expected fallback timeout 10, got %d", cfg.Connector.Timeout)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	clearEnv(t)

	tmp := t.TempDir()
	path := filepath.Join(tmp, "fieldview.yaml")

	cfg := Default()
	cfg.Connector.Provider = "static"
	cfg.Connector.Endpoint = "https://example.test/data"
	cfg.Summary.TotalColumn = "PVT"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Connector.Provider != "static" {
		t.Fatalf("expected provider 'static', got %q", loaded.Connector.Provider)
	}
	if loaded.Connector.Endpoint != "https://example.test/data" {
		t.Fatalf("expected endpoint round-trip, got %q", loaded.Connector.Endpoint)
	}
	if loaded.Summary.TotalColumn != "PVT" {
		t.Fatalf("expected total column 'PVT', got %q", loaded.Summary.TotalColumn)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error, got: %v", err)
	}
	if cfg.Connector.Provider != "kobo" {
		t.Fatalf("expected defaults for missing file, got provider %q", cfg.Connector.Provider)
	}
}
