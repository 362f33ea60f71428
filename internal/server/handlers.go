package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crimson-sun/fieldview/internal/engine"
	"github.com/crimson-sun/fieldview/internal/engine/aggregate"
	"github.com/crimson-sun/fieldview/internal/engine/filter"
	"github.com/crimson-sun/fieldview/internal/geo"
	"github.com/crimson-sun/fieldview/internal/model"
	"github.com/crimson-sun/fieldview/internal/output"
	"github.com/crimson-sun/fieldview/internal/output/csvfile"
	"github.com/crimson-sun/fieldview/internal/output/xlsx"
)

const dateLayout = "2006-01-02"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// parseRequest extracts the date window and categorical filters from query
// parameters. Date params are start/end in YYYY-MM-DD; categorical params
// are the configured filter fields, repeatable for multi-select.
func (s *Server) parseRequest(r *http.Request) (filter.DateRange, []filter.Categorical, error) {
	q := r.URL.Query()

	var start, end time.Time
	if v := q.Get("start"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return filter.DateRange{}, nil, fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", v)
		}
		start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return filter.DateRange{}, nil, fmt.Errorf("invalid end date %q: expected YYYY-MM-DD", v)
		}
		end = t
	}
	dr := filter.NewDateRange(start, end)

	var cats []filter.Categorical
	for _, ff := range s.cfg.Filters.Fields {
		values := q[ff.Param]
		if len(values) == 0 {
			continue
		}
		cats = append(cats, filter.NewCategorical(ff.Field, values...))
	}
	return dr, cats, nil
}

func parseColumns(r *http.Request) []string {
	var cols []string
	for _, v := range r.URL.Query()["columns"] {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cols = append(cols, c)
			}
		}
	}
	return cols
}

// invalidator is satisfied by fetchcache.Service; bare connectors have no
// snapshot to drop.
type invalidator interface {
	Invalidate()
}

// load runs the fetch and transform pass for a request. A fetch failure is
// reported as 502 upstream; nothing stale is served in its place. refresh=1
// drops the memoized snapshot first, forcing a re-fetch.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (engine.Result, bool) {
	dr, cats, err := s.parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return engine.Result{}, false
	}

	if r.URL.Query().Get("refresh") == "1" {
		if inv, ok := s.fetcher.(invalidator); ok {
			s.logger.Info("invalidating cached snapshot")
			inv.Invalidate()
		}
	}

	raws, err := s.fetcher.Fetch(r.Context(), s.connectorConfig())
	if err != nil {
		s.logger.Error("fetch failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream fetch failed: "+err.Error())
		return engine.Result{}, false
	}

	return s.engine.Process(raws, dr, cats), true
}

func warningStrings(res engine.Result) []string {
	out := make([]string, 0, len(res.Warnings))
	for _, wr := range res.Warnings {
		out = append(out, wr.String())
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	res, ok := s.load(w, r)
	if !ok {
		return
	}
	schema := res.Schema.Select(parseColumns(r))

	rows := make([]map[string]any, 0, len(res.Working))
	for _, row := range res.Working {
		rows = append(rows, output.RowMap(row, schema))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(res.Working),
		"total":    len(res.All),
		"columns":  schema,
		"rows":     rows,
		"warnings": warningStrings(res),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	res, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":  res.Summary,
		"empty":    res.Empty(),
		"warnings": warningStrings(res),
	})
}

type filterOptions struct {
	Field  string   `json:"field"`
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// handleFilterOptions returns the selectable values for each configured
// categorical filter, computed over the unfiltered set so selections in one
// filter never hide options in another.
func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	res, ok := s.load(w, r)
	if !ok {
		return
	}

	options := make(map[string]filterOptions, len(s.cfg.Filters.Fields))
	for _, ff := range s.cfg.Filters.Fields {
		options[ff.Param] = filterOptions{
			Field:  ff.Field,
			Label:  ff.Label,
			Values: aggregate.Distinct(res.All, ff.Field, s.locale),
		}
	}
	writeJSON(w, http.StatusOK, options)
}

// handleCharts returns value-count series for the configured chart fields.
// A field query parameter narrows the response to one series; field names
// carry slashes, so a query parameter beats a path segment here.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	res, ok := s.load(w, r)
	if !ok {
		return
	}

	fields := s.cfg.Summary.ChartFields
	if f := r.URL.Query().Get("field"); f != "" {
		fields = []string{f}
	}

	charts := make(map[string][]aggregate.ValueCount, len(fields))
	for _, field := range fields {
		charts[field] = aggregate.ValueCounts(res.Working, field)
	}
	writeJSON(w, http.StatusOK, charts)
}

// pointsResponse is a FeatureCollection with a center foreign member for
// the map's initial viewport. Coordinates are lon, lat like the features.
type pointsResponse struct {
	geo.FeatureCollection
	Center *[2]float64 `json:"center,omitempty"`
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	res, ok := s.load(w, r)
	if !ok {
		return
	}
	g := s.cfg.Geo
	resp := pointsResponse{
		FeatureCollection: geo.Points(res.Working, g.LatColumn, g.LonColumn, g.LabelField),
	}
	if lat, lon, ok := geo.Center(resp.FeatureCollection); ok {
		resp.Center = &[2]float64{lon, lat}
	}
	writeJSON(w, http.StatusOK, resp)
}

// exportRows picks the row set for an export: the filtered working set by
// default, or every flattened row when full=1 is passed.
func exportRows(r *http.Request, res engine.Result) []model.FlatRow {
	if r.URL.Query().Get("full") == "1" {
		return res.All
	}
	return res.Working
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	res, ok := s.load(w, r)
	if !ok {
		return
	}
	schema := res.Schema.Select(parseColumns(r))
	rows := exportRows(r, res)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="submissions.xlsx"`)
	if err := xlsx.Encode(w, rows, schema); err != nil {
		s.logger.Error("xlsx export failed", zap.Error(err))
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	res, ok := s.load(w, r)
	if !ok {
		return
	}
	schema := res.Schema.Select(parseColumns(r))
	rows := exportRows(r, res)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="submissions.csv"`)
	if err := csvfile.Encode(w, rows, schema); err != nil {
		s.logger.Error("csv export failed", zap.Error(err))
	}
}
