package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/facet-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/metrics"
)

// Loader supplies the catalog. It is called once per successful build.
type Loader interface {
	Load(ctx context.Context) ([]*catalog.Shirt, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) ([]*catalog.Shirt, error)

func (f LoaderFunc) Load(ctx context.Context) ([]*catalog.Shirt, error) {
	return f(ctx)
}

// StaticLoader serves an in-memory catalog.
func StaticLoader(shirts []*catalog.Shirt) Loader {
	return LoaderFunc(func(context.Context) ([]*catalog.Shirt, error) {
		return shirts, nil
	})
}

// Engine owns the catalog grouping. The grouping is built exactly once and
// published through the ready channel; readers block on it, so no reader can
// observe a partially built grouping.
type Engine struct {
	mu       sync.Mutex
	building bool
	ready    chan struct{}
	grouping *index.Grouping
	builtAt  time.Time
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewEngine creates an engine with no catalog. m may be nil.
func NewEngine(m *metrics.Metrics) *Engine {
	return &Engine{
		ready:   make(chan struct{}),
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}
}

// Build loads the catalog and groups it. A nil domain is derived from the
// loaded shirts. Build succeeds at most once; a failed build may be retried.
func (e *Engine) Build(ctx context.Context, domain *catalog.Domain, loader Loader) error {
	if loader == nil {
		return apperrors.InvalidInput("catalog loader is required")
	}
	e.mu.Lock()
	if e.grouping != nil || e.building {
		e.mu.Unlock()
		return apperrors.ErrAlreadyBuilt
	}
	e.building = true
	e.mu.Unlock()

	start := time.Now()
	g, err := e.build(ctx, domain, loader)
	elapsed := time.Since(start)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.building = false
	if err != nil {
		e.observeBuild("error", elapsed)
		e.logger.Error("catalog build failed", "error", err, "duration", elapsed)
		return err
	}
	e.grouping = g
	e.builtAt = time.Now()
	close(e.ready)

	stats := g.Stats()
	e.observeBuild("ok", elapsed)
	if e.metrics != nil {
		e.metrics.CatalogShirts.Set(float64(stats.Shirts))
		e.metrics.CatalogBuckets.WithLabelValues("total").Set(float64(stats.Buckets))
		e.metrics.CatalogBuckets.WithLabelValues("empty").Set(float64(stats.EmptyBuckets))
	}
	e.logger.Info("catalog indexed",
		"shirts", stats.Shirts,
		"buckets", stats.Buckets,
		"empty_buckets", stats.EmptyBuckets,
		"max_bucket", stats.MaxBucket,
		"colors", g.Domain().NumColors(),
		"sizes", g.Domain().NumSizes(),
		"fingerprint", fmt.Sprintf("%016x", g.Fingerprint()),
		"duration", elapsed,
	)
	return nil
}

func (e *Engine) build(ctx context.Context, domain *catalog.Domain, loader Loader) (*index.Grouping, error) {
	shirts, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	if domain == nil {
		domain = catalog.DomainFromShirts(shirts)
		e.logger.Info("facet domain derived from catalog",
			"colors", domain.Colors(),
			"sizes", domain.Sizes(),
		)
	}
	g, err := index.Build(domain, shirts)
	if err != nil {
		return nil, fmt.Errorf("grouping catalog: %w", err)
	}
	return g, nil
}

// Grouping waits until the catalog is built and returns it. It returns
// ErrNotReady if ctx ends first.
func (e *Engine) Grouping(ctx context.Context) (*index.Grouping, error) {
	select {
	case <-e.ready:
		return e.grouping, nil
	default:
	}
	select {
	case <-e.ready:
		return e.grouping, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", apperrors.ErrNotReady, ctx.Err())
	}
}

// Ready reports whether the catalog has been built.
func (e *Engine) Ready() bool {
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}

// BuiltAt is the time the grouping was published, zero before that.
func (e *Engine) BuiltAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.builtAt
}

func (e *Engine) observeBuild(status string, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.CatalogBuildsTotal.WithLabelValues(status).Inc()
	if status == "ok" {
		e.metrics.CatalogBuildDuration.Observe(elapsed.Seconds())
	}
}
