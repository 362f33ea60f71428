// Package fetchcache memoizes connector fetches for the lifetime of one
// serving session. The cache is keyed by connection identity so one
// session's data can never leak into another's; it is an explicit injected
// dependency, never process-global state.
package fetchcache

import (
	"context"
	"sync"

	"github.com/crimson-sun/fieldview/internal/connector"
	"github.com/crimson-sun/fieldview/internal/model"
)

// Service wraps a Connector with keyed memoization. Safe for concurrent use.
type Service struct {
	conn connector.Connector

	mu      sync.Mutex
	entries map[string][]model.RawSubmission
}

// New creates a Service around the given connector.
func New(conn connector.Connector) *Service {
	return &Service{
		conn:    conn,
		entries: make(map[string][]model.RawSubmission),
	}
}

// Fetch returns the memoized result for the config's (provider, endpoint,
// token, asset) identity, fetching on first use. Errors are not cached:
// a failed load retries on the next call.
func (s *Service) Fetch(ctx context.Context, cfg connector.Config) ([]model.RawSubmission, error) {
	key := cacheKey(cfg)

	s.mu.Lock()
	if rows, ok := s.entries[key]; ok {
		s.mu.Unlock()
		return rows, nil
	}
	s.mu.Unlock()

	rows, err := s.conn.Fetch(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries[key] = rows
	s.mu.Unlock()
	return rows, nil
}

// Invalidate drops every cached entry, forcing the next Fetch to reload.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]model.RawSubmission)
}

func cacheKey(cfg connector.Config) string {
	return cfg.Provider + "\x00" + cfg.Endpoint + "\x00" + cfg.APIToken + "\x00" + cfg.Extra["asset"] + "\x00" + cfg.Extra["path"]
}
