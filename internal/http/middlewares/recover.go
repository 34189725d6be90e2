package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/sessiond/internal/http/httperr"
	"github.com/dropDatabas3/sessiond/internal/observability/logger"
)

// WithRecover catches panics and answers 500 instead of crashing the process.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.From(r.Context()).Error("panic recovered",
						logger.Op("recover"),
						logger.Any("panic", rec),
					)
					httperr.WriteError(w, httperr.ErrInternal.WithDetail("panic recovered"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
