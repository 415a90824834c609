// Package httptransport exposes the engine's operational HTTP surface:
// health, readiness, and metrics. The fraud dashboard is a separate read-only
// consumer of the store and is deliberately not served from here.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter wires the ops endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}
