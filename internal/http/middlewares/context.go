package middlewares

import (
	"context"

	"github.com/dropDatabas3/sessiond/internal/identity"
)

type ctxKey string

const (
	ctxAuthKey      ctxKey = "auth"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithAuth injects the resolved authentication state into the context.
func WithAuth(ctx context.Context, auth identity.Auth) context.Context {
	return context.WithValue(ctx, ctxAuthKey, auth)
}

// GetAuth returns the authentication state for the request. The zero Auth
// (anonymous) is returned when the session middleware did not run.
func GetAuth(ctx context.Context) identity.Auth {
	if v := ctx.Value(ctxAuthKey); v != nil {
		if a, ok := v.(identity.Auth); ok {
			return a
		}
	}
	return identity.Auth{}
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID returns the request correlation id, if any.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
