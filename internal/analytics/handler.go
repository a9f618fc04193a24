package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/facet-search/pkg/middleware"
)

const maxTopQueries = 100

type Handler struct {
	aggregator *Aggregator
	logger     *slog.Logger
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{
		aggregator: aggregator,
		logger:     slog.Default().With("component", "analytics-handler"),
	}
}

// Stats serves GET /api/v1/analytics. The optional top parameter (1-100)
// bounds the query rankings. With no aggregator wired it reports analytics as
// disabled.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	top := defaultTopQueries
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTopQueries {
			h.writeJSON(w, r, http.StatusBadRequest, map[string]string{
				"error": "top must be an integer between 1 and 100",
			})
			return
		}
		top = n
	}

	if h.aggregator == nil {
		h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.aggregator.Snapshot(top))
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write analytics response",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
	}
}
