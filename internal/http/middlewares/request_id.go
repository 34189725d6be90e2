package middlewares

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dropDatabas3/sessiond/internal/observability/logger"
)

// WithRequestID assigns a correlation id to each request (honoring an inbound
// X-Request-ID), echoes it in the response, and scopes the context logger
// with it.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := setRequestID(r.Context(), requestID)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.RequestID(requestID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
