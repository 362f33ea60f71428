package static

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/crimson-sun/fieldview/internal/connector"
	"github.com/crimson-sun/fieldview/internal/model"
)

func init() {
	connector.Register("static", func() connector.Connector {
		return &Connector{}
	})
}

// Connector reads submissions from a local JSON file. Useful for offline
// work and for exercising the pipeline against captured API payloads.
type Connector struct{}

// Fetch reads the file named by Extra["path"]. The file may hold either a
// bare JSON array of submissions or the API envelope {"results": [...]}.
func (c *Connector) Fetch(ctx context.Context, cfg connector.Config) ([]model.RawSubmission, error) {
	path := cfg.Extra["path"]
	if path == "" {
		return nil, fmt.Errorf("static connector: missing required config key \"path\" in Extra")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("static connector: %w", err)
	}

	var envelope struct {
		Results []model.RawSubmission `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Results != nil {
		return envelope.Results, nil
	}

	var rows []model.RawSubmission
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("static connector: parse %s: %w", path, err)
	}
	return rows, nil
}
