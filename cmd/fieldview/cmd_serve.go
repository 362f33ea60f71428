package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/fieldview/internal/fetchcache"
	"github.com/crimson-sun/fieldview/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard data API over HTTP",
	Long: `Starts the HTTP data API: submissions, summary metrics, filter
options, chart series, map points, and spreadsheet exports. Fetches are
memoized per source, so repeated dashboard interactions do not hammer the
upstream API.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	conn, err := buildConnector()
	if err != nil {
		return err
	}
	cache := fetchcache.New(conn)

	srv := server.New(cfg, cache, buildEngine(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
