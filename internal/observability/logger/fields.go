package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
)

// Standard fields so keys stay consistent across the codebase.

// RequestID field for the request correlation id.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method field for the HTTP method.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path field for the request path.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status field for the HTTP status code.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration field for elapsed time.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// UserID field for the canonical user id.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// Provider field for the identity provider name.
func Provider(v string) zap.Field {
	return zap.String("provider", v)
}

// SessionID field for a session identifier. Sessions are bearer tokens, so
// only a truncated SHA-256 of the id is ever logged.
func SessionID(v string) zap.Field {
	sum := sha256.Sum256([]byte(v))
	return zap.String("session_id", hex.EncodeToString(sum[:8]))
}

// Component field for the component or module name.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op field for the current operation.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer field for the layer (controller, service, store).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err field for an error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Key field for a storage key.
func Key(v string) zap.Field {
	return zap.String("key", v)
}

// String generic string field.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int generic int field.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Any generic field for arbitrary values.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
