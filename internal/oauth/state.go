package oauth

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/sessiond/internal/identity"
)

// StateAudience is the expected audience of sign-in state tokens.
const StateAudience = "oauth-state"

// StateClaims binds a state token to one provider and one attempt.
type StateClaims struct {
	Provider identity.Provider
	Nonce    string
	ID       string // jti, consumed on callback
}

// State errors.
var (
	ErrStateInvalid  = errors.New("invalid state token")
	ErrStateExpired  = errors.New("state token expired")
	ErrStateProvider = errors.New("state provider mismatch")
	ErrStateReplayed = errors.New("state token already used")
)

// StateSigner issues and verifies the HMAC-signed state tokens that carry the
// CSRF binding across the provider redirect. Each token is single-use:
// consumed tokens are remembered (with TTL) so a replayed callback fails.
type StateSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration

	// pending holds issued jtis until consumed or expired.
	pending *gocache.Cache
}

// NewStateSigner creates a StateSigner. ttl bounds how long a provider
// redirect may take before the callback is rejected.
func NewStateSigner(secret []byte, issuer string, ttl time.Duration) *StateSigner {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StateSigner{
		secret:  secret,
		issuer:  issuer,
		ttl:     ttl,
		pending: gocache.New(ttl, time.Minute),
	}
}

// Sign issues a state token for the given claims.
func (s *StateSigner) Sign(claims StateClaims) (string, error) {
	now := time.Now().UTC()
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"iss":      s.issuer,
		"aud":      StateAudience,
		"jti":      claims.ID,
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
		"provider": string(claims.Provider),
		"nonce":    claims.Nonce,
	})
	signed, err := tk.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	s.pending.Set(claims.ID, struct{}{}, s.ttl)
	return signed, nil
}

// Consume verifies a state token and marks it used. A second Consume of the
// same token fails with ErrStateReplayed.
func (s *StateSigner) Consume(tokenString string) (*StateClaims, error) {
	tk, err := jwtv5.Parse(tokenString,
		func(*jwtv5.Token) (any, error) { return s.secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithIssuer(s.issuer),
		jwtv5.WithAudience(StateAudience),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrStateExpired
		}
		return nil, ErrStateInvalid
	}

	mapClaims, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrStateInvalid
	}

	jti, _ := mapClaims["jti"].(string)
	if jti == "" {
		return nil, ErrStateInvalid
	}
	if _, found := s.pending.Get(jti); !found {
		return nil, ErrStateReplayed
	}
	s.pending.Delete(jti)

	providerName, _ := mapClaims["provider"].(string)
	nonce, _ := mapClaims["nonce"].(string)
	return &StateClaims{
		Provider: identity.Provider(providerName),
		Nonce:    nonce,
		ID:       jti,
	}, nil
}
