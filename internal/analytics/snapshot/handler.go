package snapshot

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

const (
	defaultHistory = 24
	maxHistory     = 500
)

type lister interface {
	List(ctx context.Context, limit int) ([]Snapshot, error)
}

type Handler struct {
	store  lister
	logger *slog.Logger
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store, logger: slog.Default().With("component", "snapshot-handler")}
}

// History serves GET /api/v1/analytics/history?limit=N, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistory
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistory {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be an integer between 1 and 500"})
			return
		}
		limit = n
	}
	snaps, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing analytics snapshots failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps, "count": len(snaps)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
