package middlewares

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/sessiond/internal/http/httperr"
	"github.com/dropDatabas3/sessiond/internal/identity"
	"github.com/dropDatabas3/sessiond/internal/metrics"
	"github.com/dropDatabas3/sessiond/internal/observability/logger"
)

// SessionConfig configures the session middleware.
type SessionConfig struct {
	Resolver   *identity.Resolver
	CookieName string
}

// WithSession resolves the session cookie into the request's authentication
// state. Requests without a cookie pass through as anonymous; downstream
// handlers decide whether that is acceptable. A store invariant violation is
// answered with 500, never masked as anonymous.
func WithSession(cfg SessionConfig) Middleware {
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "sid"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var sessionID string
			if c, err := r.Cookie(cookieName); err == nil {
				sessionID = c.Value
			}

			auth, err := cfg.Resolver.Resolve(ctx, sessionID)
			if err != nil {
				if errors.Is(err, identity.ErrMissingUserForSession) {
					metrics.InvariantViolations.Inc()
					logger.From(ctx).Error("session invariant violation",
						logger.Op("WithSession"),
						logger.SessionID(sessionID),
						logger.Err(err),
					)
					httperr.WriteError(w, httperr.ErrInternal.WithDetail("session state corrupted"))
					return
				}
				metrics.SessionResolutions.WithLabelValues("error").Inc()
				logger.From(ctx).Error("session resolution failed",
					logger.Op("WithSession"),
					logger.Err(err),
				)
				httperr.WriteError(w, httperr.ErrUnavailable.WithCause(err))
				return
			}

			if auth.Anonymous() {
				metrics.SessionResolutions.WithLabelValues("anonymous").Inc()
			} else {
				metrics.SessionResolutions.WithLabelValues("authenticated").Inc()
				ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(auth.CurrentUser.UserID)))
			}

			next.ServeHTTP(w, r.WithContext(WithAuth(ctx, auth)))
		})
	}
}

// RequireUser rejects anonymous requests with 401. Must run after
// WithSession.
func RequireUser() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetAuth(r.Context()).Anonymous() {
				httperr.WriteError(w, httperr.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
