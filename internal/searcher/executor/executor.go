package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/facet-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/metrics"
)

// GroupingSource hands out the built grouping, waiting for it if needed.
type GroupingSource interface {
	Grouping(ctx context.Context) (*index.Grouping, error)
}

type Executor struct {
	source       GroupingSource
	readyTimeout time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// New creates an executor over source. m may be nil.
func New(source GroupingSource, m *metrics.Metrics) *Executor {
	return &Executor{
		source:  source,
		metrics: m,
		logger:  slog.Default().With("component", "query-executor"),
	}
}

// WithReadyTimeout caps how long a call waits for the catalog build.
func (e *Executor) WithReadyTimeout(d time.Duration) *Executor {
	e.readyTimeout = d
	return e
}

func (e *Executor) grouping(ctx context.Context) (*index.Grouping, error) {
	if e.readyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.readyTimeout)
		defer cancel()
	}
	return e.source.Grouping(ctx)
}

// Execute waits for the catalog and runs one search.
func (e *Executor) Execute(ctx context.Context, opts *catalog.Options) (*catalog.Results, error) {
	start := time.Now()
	g, err := e.grouping(ctx)
	if err != nil {
		e.record("not_ready", nil, 0)
		return nil, err
	}
	result, err := Search(g, opts)
	if err != nil {
		e.record(resultType(err), nil, 0)
		return nil, fmt.Errorf("executing search: %w", err)
	}
	elapsed := time.Since(start)

	rt := "hit"
	if result.TotalHits() == 0 {
		rt = "zero_result"
	}
	e.record(rt, opts, result.TotalHits())
	if e.metrics != nil {
		e.metrics.SearchLatency.WithLabelValues("uncached").Observe(elapsed.Seconds())
	}
	e.logger.Debug("query executed",
		"colors", opts.Colors,
		"sizes", opts.Sizes,
		"results", result.TotalHits(),
		"duration", elapsed,
	)
	return result, nil
}

// Domain returns the facet domain once the catalog is built.
func (e *Executor) Domain(ctx context.Context) (*catalog.Domain, error) {
	g, err := e.grouping(ctx)
	if err != nil {
		return nil, err
	}
	return g.Domain(), nil
}

// Fingerprint identifies the catalog being searched.
func (e *Executor) Fingerprint(ctx context.Context) (uint64, error) {
	g, err := e.grouping(ctx)
	if err != nil {
		return 0, err
	}
	return g.Fingerprint(), nil
}

func (e *Executor) record(resultType string, opts *catalog.Options, hits int) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	if opts == nil {
		return
	}
	e.metrics.SearchResultsCount.Observe(float64(hits))
	for _, c := range opts.Colors {
		e.metrics.FacetSelections.WithLabelValues("color", string(c)).Inc()
	}
	for _, s := range opts.Sizes {
		e.metrics.FacetSelections.WithLabelValues("size", string(s)).Inc()
	}
}

func resultType(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
