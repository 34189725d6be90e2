// Package router assembles the HTTP surface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/sessiond/internal/http/controllers"
	mw "github.com/dropDatabas3/sessiond/internal/http/middlewares"
	"github.com/dropDatabas3/sessiond/internal/identity"
)

// Deps carries everything the router mounts.
type Deps struct {
	OAuth    *controllers.OAuth
	Health   *controllers.Health
	Resolver *identity.Resolver

	// CookieName is the session cookie read by the session middleware.
	CookieName string
}

// New builds the service router.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	base := []mw.Middleware{
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithLogging(),
	}

	session := mw.WithSession(mw.SessionConfig{
		Resolver:   deps.Resolver,
		CookieName: deps.CookieName,
	})

	// Sign-in flow. The callback and signout read or write session state, so
	// responses are never cacheable.
	r.Method(http.MethodGet, "/oauth/{provider}/signin",
		mw.Chain(http.HandlerFunc(deps.OAuth.SignIn), append(base, mw.WithNoStore())...))
	r.Method(http.MethodGet, "/oauth/{provider}/callback",
		mw.Chain(http.HandlerFunc(deps.OAuth.Callback), append(base, mw.WithNoStore())...))
	r.Method(http.MethodGet, "/oauth/{provider}/signout",
		mw.Chain(http.HandlerFunc(deps.OAuth.SignOut), append(base, mw.WithNoStore(), session)...))

	// Session-gated.
	r.Method(http.MethodGet, "/me",
		mw.Chain(http.HandlerFunc(controllers.Me), append(base, mw.WithNoStore(), session, mw.RequireUser())...))

	// Operational.
	r.Method(http.MethodGet, "/healthz",
		mw.Chain(http.HandlerFunc(deps.Health.Healthz), base...))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
