package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/facet-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/resilience"
)

const (
	keyPrefix        = "facets:"
	breakerName      = "redis-cache"
	breakerThreshold = 5
	breakerCooldown  = 10 * time.Second
)

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// QueryCache memoises search results per catalog fingerprint and normalized
// options. Concurrent misses for the same key compute once. Store reads and
// writes go through a circuit breaker: while Redis keeps failing, every
// lookup is a miss and nothing is written.
type QueryCache struct {
	store   Store
	breaker *resilience.CircuitBreaker
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(store Store, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	cbCfg := resilience.CircuitBreakerConfig{
		FailureThreshold: breakerThreshold,
		ResetTimeout:     breakerCooldown,
	}
	if m != nil {
		m.CircuitBreakerState.WithLabelValues(breakerName).Set(float64(resilience.StateClosed))
		cbCfg.OnStateChange = func(name string, _, to resilience.State) {
			m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		}
	}
	return &QueryCache{
		store:   store,
		breaker: resilience.NewCircuitBreaker(breakerName, cbCfg),
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, key string) (*catalog.Results, bool) {
	var data []byte
	err := c.breaker.Execute(func() error {
		v, err := c.store.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			return nil
		}
		data = v
		return err
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache get failed", "key", key, "error", err)
	}
	if data == nil {
		c.miss()
		return nil, false
	}
	var result catalog.Results
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	c.logger.Debug("cache hit", "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, key string, result *catalog.Results) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.store.Set(ctx, key, data, c.ttl)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for opts or computes and stores it.
// The bool reports a cache hit. Options are normalized against domain first,
// so an empty facet and the fully listed facet share one entry.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	domain *catalog.Domain,
	fingerprint uint64,
	opts *catalog.Options,
	computeFn func() (*catalog.Results, error),
) (*catalog.Results, bool, error) {
	normalized, err := executor.Normalize(domain, opts)
	if err != nil {
		return nil, false, err
	}
	key := BuildKey(fingerprint, normalized)
	if result, ok := c.Get(ctx, key); ok {
		return result, true, nil
	}
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*catalog.Results), false, nil
}

// Invalidate bypasses the circuit breaker and closes it on success.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.breaker.Reset()
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

// BreakerState reports whether Redis is currently being bypassed.
func (c *QueryCache) BreakerState() resilience.State {
	return c.breaker.State()
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// BuildKey derives the cache key for already-normalized options. Facet order
// is part of the key because it decides the order of matching shirts.
func BuildKey(fingerprint uint64, opts *catalog.Options) string {
	var b strings.Builder
	b.WriteString("c=")
	for i, color := range opts.Colors {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(color))
	}
	b.WriteString("|s=")
	for i, size := range opts.Sizes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(size))
	}
	return fmt.Sprintf("%s%016x:%016x", keyPrefix, fingerprint, xxhash.Sum64String(b.String()))
}
