package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/searcher/cache"
	apperrors "github.com/Adithya-Monish-Kumar-K/facet-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/middleware"
)

type SearchExecutor interface {
	Execute(ctx context.Context, opts *catalog.Options) (*catalog.Results, error)
	Domain(ctx context.Context) (*catalog.Domain, error)
	Fingerprint(ctx context.Context) (uint64, error)
}

// EventTracker receives one event per search. *analytics.Collector
// satisfies it.
type EventTracker interface {
	Track(event analytics.SearchEvent)
}

type Handler struct {
	executor SearchExecutor
	cache    *cache.QueryCache
	tracker  EventTracker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// SearchResponse is the JSON body of a successful search.
type SearchResponse struct {
	Shirts      []*catalog.Shirt     `json:"shirts"`
	SizeCounts  []catalog.SizeCount  `json:"size_counts"`
	ColorCounts []catalog.ColorCount `json:"color_counts"`
	TotalHits   int                  `json:"total_hits"`
	CacheHit    bool                 `json:"cache_hit"`
}

// New wires the handler. queryCache, tracker and m may be nil.
func New(exec SearchExecutor, queryCache *cache.QueryCache, tracker EventTracker, m *metrics.Metrics) *Handler {
	return &Handler{
		executor: exec,
		cache:    queryCache,
		tracker:  tracker,
		metrics:  m,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

// Search serves GET /api/v1/search?color=Red&size=Small. Each parameter may
// repeat or hold a comma-separated list; omitting one means every value.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	domain, err := h.executor.Domain(ctx)
	if err != nil {
		h.fail(w, r, nil, start, err)
		return
	}
	opts, err := ParseOptions(domain, r.URL.Query()["color"], r.URL.Query()["size"])
	if err != nil {
		h.fail(w, r, nil, start, err)
		return
	}

	var result *catalog.Results
	cacheHit := false
	if h.cache != nil {
		var fingerprint uint64
		fingerprint, err = h.executor.Fingerprint(ctx)
		if err == nil {
			result, cacheHit, err = h.cache.GetOrCompute(ctx, domain, fingerprint, opts, func() (*catalog.Results, error) {
				return h.executor.Execute(ctx, opts)
			})
		}
	} else {
		result, err = h.executor.Execute(ctx, opts)
	}
	if err != nil {
		h.fail(w, r, opts, start, err)
		return
	}

	elapsed := time.Since(start)
	if cacheHit && h.metrics != nil {
		h.metrics.SearchLatency.WithLabelValues("cached").Observe(elapsed.Seconds())
	}
	log.Info("search completed",
		"colors", opts.Colors,
		"sizes", opts.Sizes,
		"total_hits", result.TotalHits(),
		"cache_hit", cacheHit,
		"latency_us", elapsed.Microseconds(),
	)
	eventType := analytics.EventSearch
	if result.TotalHits() == 0 {
		eventType = analytics.EventZeroResult
	}
	h.track(ctx, eventType, opts, result.TotalHits(), elapsed, cacheHit, nil)

	h.writeJSON(w, http.StatusOK, &SearchResponse{
		Shirts:      result.Shirts,
		SizeCounts:  result.SizeCounts,
		ColorCounts: result.ColorCounts,
		TotalHits:   result.TotalHits(),
		CacheHit:    cacheHit,
	})
}

// Facets serves the canonical domain.
func (h *Handler) Facets(w http.ResponseWriter, r *http.Request) {
	domain, err := h.executor.Domain(r.Context())
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, domain)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
		"breaker":  h.cache.BreakerState().String(),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, apperrors.HTTPStatusCode(apperrors.ErrCacheDisabled), "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// ParseOptions resolves raw query values against domain. Names match
// case-insensitively; unknown names fail with a NotFoundError.
func ParseOptions(domain *catalog.Domain, colorParams, sizeParams []string) (*catalog.Options, error) {
	opts := &catalog.Options{}
	for _, name := range splitParams(colorParams) {
		c, err := domain.ParseColor(name)
		if err != nil {
			return nil, err
		}
		opts.Colors = append(opts.Colors, c)
	}
	for _, name := range splitParams(sizeParams) {
		s, err := domain.ParseSize(name)
		if err != nil {
			return nil, err
		}
		opts.Sizes = append(opts.Sizes, s)
	}
	return opts, nil
}

func splitParams(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, opts *catalog.Options, start time.Time, err error) {
	status := apperrors.HTTPStatusCode(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("search failed", "query", r.URL.RawQuery, "error", err)
	} else {
		log.Info("search rejected", "query", r.URL.RawQuery, "status", status, "error", err)
	}
	h.track(r.Context(), analytics.EventFailed, opts, 0, time.Since(start), false, err)

	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError && !errors.Is(err, apperrors.ErrNotReady) {
		message = "search failed"
	}
	h.writeError(w, status, message)
}

func (h *Handler) track(ctx context.Context, eventType analytics.EventType, opts *catalog.Options, hits int, elapsed time.Duration, cacheHit bool, err error) {
	if h.tracker == nil {
		return
	}
	event := analytics.SearchEvent{
		Type:          eventType,
		TotalHits:     hits,
		LatencyMicros: elapsed.Microseconds(),
		CacheHit:      cacheHit,
		Timestamp:     time.Now().UTC(),
		RequestID:     middleware.GetRequestID(ctx),
	}
	if opts != nil {
		for _, c := range opts.Colors {
			event.Colors = append(event.Colors, string(c))
		}
		for _, s := range opts.Sizes {
			event.Sizes = append(event.Sizes, string(s))
		}
	}
	if err != nil {
		event.Error = err.Error()
	}
	h.tracker.Track(event)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
