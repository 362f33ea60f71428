// Package pipeline composes a connector, the reshaping engine, and outputs
// into one load-transform-export pass.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crimson-sun/fieldview/internal/connector"
	"github.com/crimson-sun/fieldview/internal/engine"
	"github.com/crimson-sun/fieldview/internal/engine/filter"
	"github.com/crimson-sun/fieldview/internal/model"
	"github.com/crimson-sun/fieldview/internal/output"
)

// Fetcher abstracts the submission source: a bare connector or the
// memoizing fetchcache.Service both satisfy it.
type Fetcher interface {
	Fetch(ctx context.Context, cfg connector.Config) ([]model.RawSubmission, error)
}

// Pipeline connects a fetcher, the engine, and an output.
type Pipeline struct {
	fetcher Fetcher
	engine  *engine.Engine
	output  output.Output
	logger  *zap.Logger
}

// New creates a Pipeline. output may be nil for compute-only passes;
// logger may be nil.
func New(f Fetcher, eng *engine.Engine, out output.Output, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		fetcher: f,
		engine:  eng,
		output:  out,
		logger:  logger,
	}
}

// Run performs one pass: fetch, flatten, filter, summarize, export.
// A fetch failure is fatal for the pass and yields no partial data.
// Flatten warnings and an empty working set degrade gracefully: they are
// logged and the pass continues.
func (p *Pipeline) Run(ctx context.Context, cfg connector.Config, dr filter.DateRange, cats []filter.Categorical, columns []string) (engine.Result, error) {
	raws, err := p.fetcher.Fetch(ctx, cfg)
	if err != nil {
		return engine.Result{}, fmt.Errorf("pipeline fetch: %w", err)
	}
	p.logger.Info("fetched submissions", zap.Int("count", len(raws)))

	res := p.engine.Process(raws, dr, cats)
	for _, w := range res.Warnings {
		p.logger.Warn("flatten warning", zap.String("kind", string(w.Kind)), zap.String("field", w.Field), zap.Int("rows", w.Count))
	}
	if !res.Summary.TotalKnown {
		p.logger.Warn("total column absent from schema; total reported as unknown")
	}
	if res.Empty() {
		p.logger.Info("no rows in working set after filtering")
	}

	if p.output != nil {
		schema := res.Schema.Select(columns)
		if err := p.output.Write(ctx, res.Working, schema); err != nil {
			return engine.Result{}, fmt.Errorf("pipeline output: %w", err)
		}
	}

	return res, nil
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	if p.output == nil {
		return nil
	}
	return p.output.Close()
}
