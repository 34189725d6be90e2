// Package tokens generates the opaque identifiers used as session handles.
package tokens

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateOpaque returns a random token of nBytes entropy, base64url encoded
// without padding. Used for session ids and one-time nonces.
func GenerateOpaque(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
