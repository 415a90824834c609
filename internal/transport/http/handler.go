package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bankguard/internal/platform/metrics"
)

// Pinger is the slice of the store the health check needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler is the thin HTTP layer for operations. It carries no decision
// logic; transport concerns stay isolated here.
type Handler struct {
	store   Pinger
	metrics *metrics.Metrics
}

func NewHandler(store Pinger, m *metrics.Metrics) *Handler {
	return &Handler{store: store, metrics: m}
}

// Register mounts the ops endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.HandleHealth)
	r.Get("/readyz", h.HandleReady)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
}

// HandleHealth reports process liveness only.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReady verifies the store is reachable, since an engine that cannot
// reach its store can only burn ticks.
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
