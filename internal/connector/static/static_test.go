package static

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/crimson-sun/fieldview/internal/connector"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestFetch_Envelope(t *testing.T) {
	path := writeFixture(t, "data.json", `{"count":1,"results":[{"_id":7,"GPS":"-3.3 29.36 820 4"}]}`)

	c := &Connector{}
	rows, err := c.Fetch(context.Background(), connector.Config{Extra: map[string]string{"path": path}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["GPS"] != "-3.3 29.36 820 4" {
		t.Fatalf("unexpected row: %v", rows[0])
	}
}

func TestFetch_BareArray(t *testing.T) {
	path := writeFixture(t, "data.json", `[{"_id":1},{"_id":2}]`)

	c := &Connector{}
	rows, err := c.Fetch(context.Background(), connector.Config{Extra: map[string]string{"path": path}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestFetch_MissingPath(t *testing.T) {
	c := &Connector{}
	if _, err := c.Fetch(context.Background(), connector.Config{}); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestFetch_BadJSON(t *testing.T) {
	path := writeFixture(t, "data.json", `not json`)

	c := &Connector{}
	if _, err := c.Fetch(context.Background(), connector.Config{Extra: map[string]string{"path": path}}); err == nil {
		t.Fatal("expected parse error")
	}
}
