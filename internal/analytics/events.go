package analytics

import (
	"strings"
	"time"
)

type EventType string

const (
	EventSearch     EventType = "search"
	EventZeroResult EventType = "zero_result"
	EventFailed     EventType = "search_failed"
)

// SearchEvent describes one facet search as seen by the HTTP handler.
type SearchEvent struct {
	Type          EventType `json:"type"`
	Colors        []string  `json:"colors"`
	Sizes         []string  `json:"sizes"`
	TotalHits     int       `json:"total_hits"`
	LatencyMicros int64     `json:"latency_us"`
	CacheHit      bool      `json:"cache_hit"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id"`
}

// QueryKey is a readable identity for the facet selection of e.
func (e SearchEvent) QueryKey() string {
	colors := "*"
	if len(e.Colors) > 0 {
		colors = strings.Join(e.Colors, ",")
	}
	sizes := "*"
	if len(e.Sizes) > 0 {
		sizes = strings.Join(e.Sizes, ",")
	}
	return "colors=" + colors + " sizes=" + sizes
}
