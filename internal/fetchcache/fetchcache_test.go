package fetchcache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/fieldview/internal/connector"
	"github.com/crimson-sun/fieldview/internal/model"
)

// countingConnector returns canned rows and counts calls.
type countingConnector struct {
	calls int
	rows  []model.RawSubmission
	err   error
}

func (c *countingConnector) Fetch(_ context.Context, _ connector.Config) ([]model.RawSubmission, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.rows, nil
}

func TestFetch_Memoizes(t *testing.T) {
	conn := &countingConnector{rows: []model.RawSubmission{{"_id": float64(1)}}}
	svc := New(conn)
	cfg := connector.Config{Provider: "kobo", Endpoint: "https://a.test/data/", APIToken: "t1"}

	rows, err := svc.Fetch(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = svc.Fetch(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, 1, conn.calls, "second fetch for the same key must be served from cache")
}

func TestFetch_KeyedByEndpointAndToken(t *testing.T) {
	conn := &countingConnector{rows: []model.RawSubmission{}}
	svc := New(conn)

	_, err := svc.Fetch(context.Background(), connector.Config{Endpoint: "https://a.test", APIToken: "t1"})
	require.NoError(t, err)
	_, err = svc.Fetch(context.Background(), connector.Config{Endpoint: "https://a.test", APIToken: "t2"})
	require.NoError(t, err)
	_, err = svc.Fetch(context.Background(), connector.Config{Endpoint: "https://b.test", APIToken: "t1"})
	require.NoError(t, err)

	require.Equal(t, 3, conn.calls, "distinct (endpoint, token) pairs must not share entries")
}

func TestFetch_ErrorsNotCached(t *testing.T) {
	conn := &countingConnector{err: errors.New("boom")}
	svc := New(conn)
	cfg := connector.Config{Endpoint: "https://a.test"}

	_, err := svc.Fetch(context.Background(), cfg)
	require.Error(t, err)

	conn.err = nil
	conn.rows = []model.RawSubmission{{"_id": float64(2)}}
	rows, err := svc.Fetch(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 2, conn.calls)
}

func TestInvalidate(t *testing.T) {
	conn := &countingConnector{rows: []model.RawSubmission{}}
	svc := New(conn)
	cfg := connector.Config{Endpoint: "https://a.test"}

	_, err := svc.Fetch(context.Background(), cfg)
	require.NoError(t, err)
	svc.Invalidate()
	_, err = svc.Fetch(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, 2, conn.calls)
}
