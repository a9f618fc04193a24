package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchFacetsUsesServedDomain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/facets", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"colors":["Red"],"sizes":["Small","Large"]}`))
	}))
	defer srv.Close()

	f, err := fetchFacets(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"Red"}, f.Colors)
	assert.Equal(t, []string{"Small", "Large"}, f.Sizes)

	queries := queryMix(f)
	assert.Equal(t, []url.Values{
		{},
		{"color": {"Red"}},
		{"size": {"Small"}},
		{"size": {"Small"}, "color": {"Red"}},
		{"size": {"Large"}},
		{"size": {"Large"}, "color": {"Red"}},
	}, queries)
	for _, q := range queries {
		assert.NotEqual(t, "Blue", q.Get("color"))
	}
}

func TestFetchFacetsReportsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "catalog not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := fetchFacets(context.Background(), srv.Client(), srv.URL)
	assert.ErrorContains(t, err, "status 503")
}

func TestQueryMixEmptyDomain(t *testing.T) {
	assert.Equal(t, []url.Values{{}}, queryMix(facets{}))
}
