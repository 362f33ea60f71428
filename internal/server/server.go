// Package server exposes the shaped working set over HTTP for the external
// presentation surface: rows, summary metrics, filter options, chart
// series, map points, and spreadsheet exports.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/crimson-sun/fieldview/internal/config"
	"github.com/crimson-sun/fieldview/internal/connector"
	"github.com/crimson-sun/fieldview/internal/engine"
	"github.com/crimson-sun/fieldview/internal/pipeline"
)

// Server serves the dashboard data API. Each request runs a full fetch
// (through the memoizing fetcher) and transform pass; there is no shared
// mutable state beyond the keyed fetch cache.
type Server struct {
	cfg     config.Config
	fetcher pipeline.Fetcher
	engine  *engine.Engine
	logger  *zap.Logger
	locale  language.Tag
}

// New creates a Server. logger may be nil.
func New(cfg config.Config, fetcher pipeline.Fetcher, eng *engine.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		fetcher: fetcher,
		engine:  eng,
		logger:  logger,
		locale:  language.Make(cfg.Summary.Locale),
	}
}

// Router builds the chi router with all data API routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(s.recovery)
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/submissions", s.handleSubmissions)
		r.Get("/summary", s.handleSummary)
		r.Get("/filters/options", s.handleFilterOptions)
		r.Get("/charts", s.handleCharts)
		r.Get("/points", s.handlePoints)
		r.Get("/export.xlsx", s.handleExportXLSX)
		r.Get("/export.csv", s.handleExportCSV)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then drains with a
// short shutdown grace period.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("serving dashboard API", zap.String("addr", s.cfg.Server.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) connectorConfig() connector.Config {
	cc := s.cfg.Connector
	return connector.Config{
		Provider: cc.Provider,
		Endpoint: cc.Endpoint,
		APIToken: cc.APIToken,
		Timeout:  time.Duration(cc.Timeout) * time.Second,
		Extra:    cc.Extra,
	}
}
