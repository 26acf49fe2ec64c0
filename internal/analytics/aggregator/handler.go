package aggregator

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
)

const (
	defaultSnapshotLimit = 10
	maxSnapshotLimit     = 100
)

// SnapshotReader is satisfied by *Store.
type SnapshotReader interface {
	LatestSnapshot(ctx context.Context) (*analytics.AggregatedStats, error)
	ListSnapshots(ctx context.Context, limit int) ([]analytics.AggregatedStats, error)
}

// Handler serves persisted snapshots.
type Handler struct {
	store  SnapshotReader
	logger *slog.Logger
}

func NewHandler(store SnapshotReader) *Handler {
	return &Handler{
		store:  store,
		logger: slog.Default().With("component", "snapshot-handler"),
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/analytics/snapshots", h.List)
	mux.HandleFunc("GET /api/v1/analytics/snapshots/latest", h.Latest)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultSnapshotLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxSnapshotLimit)
	}
	snapshots, err := h.store.ListSnapshots(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing snapshots failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot store unavailable"})
		return
	}
	if snapshots == nil {
		snapshots = []analytics.AggregatedStats{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"count": len(snapshots), "snapshots": snapshots})
}

func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.store.LatestSnapshot(r.Context())
	if err != nil {
		h.logger.Error("loading latest snapshot failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "snapshot store unavailable"})
		return
	}
	if snapshot == nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no snapshot recorded yet"})
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write snapshot response", "error", err)
	}
}
