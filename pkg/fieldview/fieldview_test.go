package fieldview

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const fixtureJSON = `{"results": [
  {"_submission_time": "2023-11-05T09:00:00", "Name_Agent": "Alice",
   "Identification/Province": "Kinshasa", "Identification/Type_PDV": "Retail",
   "GPS": "-4.32 15.31 280.0 0.0", "Sondage": "Oil 10.5 2 21.0"},
  {"_submission_time": "2023-11-06T10:30:00", "Name_Agent": "Bob",
   "Identification/Province": "Goma", "Identification/Type_PDV": "Wholesale",
   "GPS": "-1.68 29.22 1500.0 0.0", "Sondage": "Soap 5.25 3 15.75"},
  {"_submission_time": "2023-12-01T08:00:00", "Name_Agent": "Alice",
   "Identification/Province": "Kinshasa", "Identification/Type_PDV": "Retail",
   "GPS": "-4.33 15.30 275.0 0.0", "Sondage": "Oil 10.5 1 10.5"}
]}`

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()

	path := filepath.Join(t.TempDir(), "submissions.json")
	require.NoError(t, os.WriteFile(path, []byte(fixtureJSON), 0o644))

	base := []Option{
		WithProvider("static"),
		WithExtra("path", path),
		WithComposite("GPS",
			[]string{"Latitude", "Longitude", "Altitude", "Other"},
			[]string{"Latitude", "Longitude", "Altitude"}),
		WithComposite("Sondage",
			[]string{"Category", "UnitPrice", "Quantity", "TotalPrice"},
			[]string{"UnitPrice", "Quantity", "TotalPrice"}),
		WithTotalColumn("TotalPrice"),
	}
	c, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestLoadAndSummary(t *testing.T) {
	c := newTestClient(t)

	ds, err := c.Load(context.Background(), Query{})
	require.NoError(t, err)

	s := ds.Summary()
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 47.25, s.Total, 1e-9)
	assert.True(t, s.TotalKnown)
	assert.False(t, ds.Empty())
	assert.Empty(t, ds.Warnings())
}

func TestLoadDateWindow(t *testing.T) {
	c := newTestClient(t)

	ds, err := c.Load(context.Background(), Query{
		Start: time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Summary().Count)
	assert.InDelta(t, 36.75, ds.Summary().Total, 1e-9)
}

func TestLoadCategoricalFilter(t *testing.T) {
	c := newTestClient(t)

	ds, err := c.Load(context.Background(), Query{
		Filters: map[string][]string{"Name_Agent": {"Alice"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Summary().Count)

	rows := ds.Rows("Name_Agent")
	for _, row := range rows {
		assert.Equal(t, "Alice", row["Name_Agent"])
	}
}

func TestRowsAndColumns(t *testing.T) {
	c := newTestClient(t)

	ds, err := c.Load(context.Background(), Query{})
	require.NoError(t, err)

	cols := ds.Columns()
	assert.Contains(t, cols, "Latitude")
	assert.Contains(t, cols, "TotalPrice")

	rows := ds.Rows("Name_Agent", "TotalPrice")
	require.Len(t, rows, 3)
	assert.Equal(t, "Alice", rows[0]["Name_Agent"])
	assert.Equal(t, 21.0, rows[0]["TotalPrice"])
	assert.Len(t, rows[0], 2)
}

func TestValueCountsAndOptions(t *testing.T) {
	c := newTestClient(t)

	ds, err := c.Load(context.Background(), Query{})
	require.NoError(t, err)

	counts := ds.ValueCounts("Identification/Type_PDV")
	require.Len(t, counts, 2)
	assert.Equal(t, "Retail", counts[0].Value)
	assert.Equal(t, 2, counts[0].Count)

	assert.Equal(t, []string{"Goma", "Kinshasa"},
		ds.Options("Identification/Province", "fr"))
}

func TestOptionsIgnoreActiveFilters(t *testing.T) {
	c := newTestClient(t)

	ds, err := c.Load(context.Background(), Query{
		Filters: map[string][]string{"Identification/Province": {"Goma"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, ds.Options("Name_Agent", "fr"))
}

func TestPoints(t *testing.T) {
	c := newTestClient(t)

	ds, err := c.Load(context.Background(), Query{})
	require.NoError(t, err)

	fc := ds.Points("Latitude", "Longitude", "Name_Agent")
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, [2]float64{15.31, -4.32}, fc.Features[0].Geometry.Coordinates)

	lat, lon, ok := ds.Center("Latitude", "Longitude")
	require.True(t, ok)
	assert.InDelta(t, (-4.32-1.68-4.33)/3, lat, 1e-9)
	assert.InDelta(t, (15.31+29.22+15.30)/3, lon, 1e-9)
}

func TestCenterEmptyWorkingSet(t *testing.T) {
	c := newTestClient(t)

	ds, err := c.Load(context.Background(), Query{
		Filters: map[string][]string{"Name_Agent": {"Nobody"}},
	})
	require.NoError(t, err)

	_, _, ok := ds.Center("Latitude", "Longitude")
	assert.False(t, ok, "no coordinates, no center")
}

func TestExportXLSX(t *testing.T) {
	c := newTestClient(t)

	ds, err := c.Load(context.Background(), Query{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, ds.ExportXLSX(path, "Name_Agent", "Category", "TotalPrice"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Submissions")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Name_Agent", "Category", "TotalPrice"}, rows[0])
}

func TestExportCSV(t *testing.T) {
	c := newTestClient(t)

	ds, err := c.Load(context.Background(), Query{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, ds.ExportCSV(path, "Name_Agent", "TotalPrice"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Name_Agent,TotalPrice")
	assert.Contains(t, string(data), "Alice,21")
}

func TestRefreshReloadsChangedSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submissions.json")
	require.NoError(t, os.WriteFile(path, []byte(fixtureJSON), 0o644))

	c, err := New(
		WithProvider("static"),
		WithExtra("path", path),
		WithTotalColumn("TotalPrice"),
	)
	require.NoError(t, err)

	ds, err := c.Load(context.Background(), Query{})
	require.NoError(t, err)
	require.Equal(t, 3, ds.Summary().Count)

	require.NoError(t, os.WriteFile(path, []byte(`{"results": [{"Name_Agent": "Eve"}]}`), 0o644))

	ds, err = c.Load(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Summary().Count, "without Refresh the memoized snapshot is served")

	c.Refresh()
	ds, err = c.Load(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Summary().Count, "Refresh must drop the snapshot and re-fetch")
}

func TestUnknownProvider(t *testing.T) {
	_, err := New(WithProvider("nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown connector provider")
}

func TestLoadFailureReturnsNoData(t *testing.T) {
	c, err := New(
		WithProvider("static"),
		WithExtra("path", filepath.Join(t.TempDir(), "missing.json")),
	)
	require.NoError(t, err)

	ds, err := c.Load(context.Background(), Query{})
	require.Error(t, err)
	assert.Nil(t, ds)
}
