package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/facet-search/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/facet-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/middleware"
)

type recordingTracker struct {
	mu     sync.Mutex
	events []analytics.SearchEvent
}

func (r *recordingTracker) Track(event analytics.SearchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingTracker) all() []analytics.SearchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]analytics.SearchEvent(nil), r.events...)
}

type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return nil, goredis.Nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *mapStore) FlushByPattern(context.Context, string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.data))
	s.data = make(map[string][]byte)
	return n, nil
}

func newTestExecutor(t *testing.T) *executor.Executor {
	t.Helper()
	e := indexer.NewEngine(nil)
	require.NoError(t, e.Build(context.Background(), catalog.DefaultDomain(), indexer.StaticLoader([]*catalog.Shirt{
		{ID: "1", Name: "A", Color: catalog.Red, Size: catalog.Small},
		{ID: "2", Name: "B", Color: catalog.Red, Size: catalog.Large},
		{ID: "3", Name: "C", Color: catalog.Blue, Size: catalog.Small},
	})))
	return executor.New(e, nil)
}

func newMux(h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/facets", h.Facets)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	return middleware.RequestID(mux)
}

func doRequest(t *testing.T, handler http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	tracker := &recordingTracker{}
	srv := newMux(New(newTestExecutor(t), nil, tracker, nil))

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/search?color=red&size=Small")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalHits)
	require.Len(t, resp.Shirts, 1)
	assert.Equal(t, "A", resp.Shirts[0].Name)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, []catalog.SizeCount{
		{Size: catalog.Small, Count: 1},
		{Size: catalog.Medium, Count: 0},
		{Size: catalog.Large, Count: 1},
	}, resp.SizeCounts)
	assert.Equal(t, 2, resp.ColorCounts[0].Count)

	events := tracker.all()
	require.Len(t, events, 1)
	assert.Equal(t, analytics.EventSearch, events[0].Type)
	assert.Equal(t, []string{"Red"}, events[0].Colors)
	assert.Equal(t, []string{"Small"}, events[0].Sizes)
	assert.NotEmpty(t, events[0].RequestID)
}

func TestSearchEndpointListParams(t *testing.T) {
	srv := newMux(New(newTestExecutor(t), nil, nil, nil))

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/search?color=Blue,Red&color=Yellow")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Shirts, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{resp.Shirts[0].Name, resp.Shirts[1].Name, resp.Shirts[2].Name})
}

func TestSearchEndpointZeroResults(t *testing.T) {
	tracker := &recordingTracker{}
	srv := newMux(New(newTestExecutor(t), nil, tracker, nil))

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/search?color=Black")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.TotalHits)
	assert.NotNil(t, resp.Shirts)
	require.Len(t, tracker.all(), 1)
	assert.Equal(t, analytics.EventZeroResult, tracker.all()[0].Type)
}

func TestSearchEndpointUnknownValue(t *testing.T) {
	tracker := &recordingTracker{}
	srv := newMux(New(newTestExecutor(t), nil, tracker, nil))

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/search?color=Green")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "Green")
	require.Len(t, tracker.all(), 1)
	assert.Equal(t, analytics.EventFailed, tracker.all()[0].Type)
}

func TestSearchEndpointNotReady(t *testing.T) {
	exec := executor.New(indexer.NewEngine(nil), nil).WithReadyTimeout(5 * time.Millisecond)
	srv := newMux(New(exec, nil, nil, nil))

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/search")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.ErrNotReady.Error())
}

func TestSearchEndpointCaching(t *testing.T) {
	qc := cache.New(&mapStore{data: make(map[string][]byte)}, time.Minute, nil)
	srv := newMux(New(newTestExecutor(t), qc, nil, nil))

	var first, second SearchResponse
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/search?size=Small")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/search?size=small&color=")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	assert.False(t, first.CacheHit)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.TotalHits, second.TotalHits)
	assert.Equal(t, first.SizeCounts, second.SizeCounts)

	rec = doRequest(t, srv, http.MethodGet, "/api/v1/cache/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1.0, stats["hits"])
	assert.Equal(t, 1.0, stats["misses"])
	assert.Equal(t, "50.0%", stats["hit_rate"])
	assert.Equal(t, "closed", stats["breaker"])

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/cache/invalidate")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCacheEndpointsWithoutCache(t *testing.T) {
	srv := newMux(New(newTestExecutor(t), nil, nil, nil))

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/cache/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"disabled"}`, rec.Body.String())

	rec = doRequest(t, srv, http.MethodPost, "/api/v1/cache/invalidate")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFacetsEndpoint(t *testing.T) {
	srv := newMux(New(newTestExecutor(t), nil, nil, nil))

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/facets")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"colors":["Red","Blue","Yellow","White","Black"],"sizes":["Small","Medium","Large"]}`,
		rec.Body.String())
}

func TestParseOptions(t *testing.T) {
	domain := catalog.DefaultDomain()

	opts, err := ParseOptions(domain, []string{"red, blue", " ", "RED"}, []string{"large"})
	require.NoError(t, err)
	assert.Equal(t, []catalog.Color{catalog.Red, catalog.Blue, catalog.Red}, opts.Colors)
	assert.Equal(t, []catalog.Size{catalog.Large}, opts.Sizes)

	opts, err = ParseOptions(domain, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, opts.Colors)
	assert.Empty(t, opts.Sizes)

	_, err = ParseOptions(domain, nil, []string{"XL"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
