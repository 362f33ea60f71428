package connector

import (
	"context"
	"time"

	"github.com/crimson-sun/fieldview/internal/model"
)

// Connector defines the interface all submission source connectors implement.
type Connector interface {
	// Fetch retrieves the full submission set for the configured source.
	// A transport failure returns an error and no rows; callers never see
	// a partial set.
	Fetch(ctx context.Context, cfg Config) ([]model.RawSubmission, error)
}

// Config holds provider-specific connection settings.
type Config struct {
	Provider string
	Endpoint string
	APIToken string
	Timeout  time.Duration
	Extra    map[string]string
}
