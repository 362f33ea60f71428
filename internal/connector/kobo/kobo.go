package kobo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/crimson-sun/fieldview/internal/connector"
	"github.com/crimson-sun/fieldview/internal/connector/httpclient"
	"github.com/crimson-sun/fieldview/internal/model"
)

const defaultEndpoint = "https://kf.kobotoolbox.org"

// maxPages bounds pagination so a broken "next" chain cannot loop forever.
const maxPages = 1000

func init() {
	connector.Register("kobo", func() connector.Connector {
		return &Connector{}
	})
}

// Connector implements the connector.Connector interface for the
// KoboToolbox data API (KoBoCAT-compatible form collection servers).
type Connector struct{}

// dataResponse is one page of the assets data endpoint.
type dataResponse struct {
	Count    int                   `json:"count"`
	Next     string                `json:"next"`
	Previous string                `json:"previous"`
	Results  []model.RawSubmission `json:"results"`
}

// Fetch retrieves every submission for the configured asset, following
// pagination links. Returns the full set or an error, never a partial set.
func (c *Connector) Fetch(ctx context.Context, cfg connector.Config) ([]model.RawSubmission, error) {
	first, baseURL, err := resolveURL(cfg)
	if err != nil {
		return nil, err
	}

	var opts []httpclient.Option
	if cfg.Timeout > 0 {
		opts = append(opts, httpclient.WithTimeout(cfg.Timeout))
	}
	client := httpclient.New(baseURL, cfg.APIToken, opts...)

	var results []model.RawSubmission
	next := first
	for page := 0; next != ""; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("kobo connector: pagination exceeded %d pages", maxPages)
		}

		var q url.Values
		if page == 0 && !strings.Contains(next, "format=") {
			q = url.Values{"format": []string{"json"}}
		}

		var resp dataResponse
		if err := client.GetJSON(ctx, next, q, &resp); err != nil {
			return nil, fmt.Errorf("kobo connector: fetch: %w", err)
		}

		results = append(results, resp.Results...)

		if resp.Next == next {
			break
		}
		next = resp.Next
	}

	return results, nil
}

// resolveURL determines the first page URL and the client base URL.
// An explicit endpoint wins; otherwise the asset UID from Extra builds the
// standard assets data path.
func resolveURL(cfg connector.Config) (first, baseURL string, err error) {
	if cfg.Endpoint != "" {
		if strings.HasPrefix(cfg.Endpoint, "http://") || strings.HasPrefix(cfg.Endpoint, "https://") {
			return cfg.Endpoint, cfg.Endpoint, nil
		}
		return cfg.Endpoint, defaultEndpoint, nil
	}

	asset := cfg.Extra["asset"]
	if asset == "" {
		return "", "", fmt.Errorf("kobo connector: missing required config key \"asset\" in Extra")
	}
	return "/api/v2/assets/" + asset + "/data/", defaultEndpoint, nil
}
