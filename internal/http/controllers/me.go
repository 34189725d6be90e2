package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/dropDatabas3/sessiond/internal/http/httperr"
	"github.com/dropDatabas3/sessiond/internal/http/middlewares"
)

// Me handles GET /me: returns the canonical user bound to the session.
// Mounted behind WithSession + RequireUser, so the auth state is always
// populated here.
func Me(w http.ResponseWriter, r *http.Request) {
	auth := middlewares.GetAuth(r.Context())
	if auth.Anonymous() {
		httperr.WriteError(w, httperr.ErrUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(auth.CurrentUser)
}
