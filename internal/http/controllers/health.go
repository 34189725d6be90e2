package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/dropDatabas3/sessiond/internal/http/httperr"
	"github.com/dropDatabas3/sessiond/internal/kv"
)

// Health reports service readiness, including substrate connectivity.
type Health struct {
	kv kv.Store
}

// NewHealth creates the health controller.
func NewHealth(store kv.Store) *Health {
	return &Health{kv: store}
}

// Healthz handles GET /healthz.
func (h *Health) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.kv.Ping(r.Context()); err != nil {
		httperr.WriteError(w, httperr.ErrUnavailable.WithCause(err))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
