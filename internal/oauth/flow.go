// Package oauth drives the provider handshake: sign-in redirect construction,
// state verification, code exchange, and handing the fetched profile to the
// identity layer. The identity store itself never sees any of this; it only
// consumes the resulting session id and profile.
package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dropDatabas3/sessiond/internal/identity"
	"github.com/dropDatabas3/sessiond/internal/oauth/github"
	"github.com/dropDatabas3/sessiond/internal/oauth/google"
	"github.com/dropDatabas3/sessiond/internal/observability/logger"
	tokens "github.com/dropDatabas3/sessiond/internal/security/token"
)

// Provider is a configured upstream identity provider.
type Provider interface {
	// Name returns the provenance tag.
	Name() identity.Provider

	// AuthURL builds the authorization redirect carrying the state token.
	AuthURL(state string) string

	// FetchProfile exchanges the callback code and fetches the profile.
	FetchProfile(ctx context.Context, code string) (identity.Profile, error)
}

// Flow errors.
var (
	ErrProviderUnknown = errors.New("oauth: provider not configured")
	ErrExchangeFailed  = errors.New("oauth: code exchange failed")
	ErrSessionIDFailed = errors.New("oauth: session id generation failed")
)

// Flow orchestrates sign-in across the configured providers.
type Flow struct {
	providers map[identity.Provider]Provider
	states    *StateSigner
	auth      *identity.Authenticator
}

// NewFlow creates a Flow.
func NewFlow(states *StateSigner, auth *identity.Authenticator, providers ...Provider) *Flow {
	m := make(map[identity.Provider]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Flow{providers: m, states: states, auth: auth}
}

// Providers lists the configured provider names.
func (f *Flow) Providers() []identity.Provider {
	names := make([]identity.Provider, 0, len(f.providers))
	for name := range f.providers {
		names = append(names, name)
	}
	return names
}

// StartSignIn issues a fresh state token and returns the provider redirect
// URL for it.
func (f *Flow) StartSignIn(ctx context.Context, providerName identity.Provider) (string, error) {
	p, ok := f.providers[providerName]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrProviderUnknown, providerName)
	}

	nonce, err := tokens.GenerateOpaque(16)
	if err != nil {
		return "", err
	}
	state, err := f.states.Sign(StateClaims{
		Provider: providerName,
		Nonce:    nonce,
		ID:       uuid.NewString(),
	})
	if err != nil {
		return "", err
	}

	logger.From(ctx).Debug("sign-in started",
		logger.Layer("service"),
		logger.Op("Flow.StartSignIn"),
		logger.Provider(string(providerName)),
	)
	return p.AuthURL(state), nil
}

// HandleCallback completes a provider callback: it consumes the state token,
// exchanges the code, normalizes and stores the profile under a freshly
// minted session id, and returns that id. A single attempt: when the store
// write does not commit the whole handshake is the unit of retry.
func (f *Flow) HandleCallback(ctx context.Context, providerName identity.Provider, state, code string) (string, error) {
	p, ok := f.providers[providerName]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrProviderUnknown, providerName)
	}

	claims, err := f.states.Consume(state)
	if err != nil {
		return "", err
	}
	if claims.Provider != providerName {
		return "", ErrStateProvider
	}

	profile, err := p.FetchProfile(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}

	sessionID, err := tokens.GenerateOpaque(32)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionIDFailed, err)
	}

	if err := f.auth.CompleteSignIn(ctx, sessionID, profile); err != nil {
		return "", err
	}
	return sessionID, nil
}

// SignOut removes the session. Always treated as successful.
func (f *Flow) SignOut(ctx context.Context, sessionID string) error {
	return f.auth.SignOut(ctx, sessionID)
}

// githubProvider adapts the GitHub client to Provider.
type githubProvider struct{ client *github.OAuth }

// GitHub wraps a GitHub OAuth client as a Flow provider.
func GitHub(client *github.OAuth) Provider { return githubProvider{client: client} }

func (githubProvider) Name() identity.Provider { return identity.ProviderGitHub }

func (p githubProvider) AuthURL(state string) string { return p.client.AuthURL(state) }

func (p githubProvider) FetchProfile(ctx context.Context, code string) (identity.Profile, error) {
	tr, err := p.client.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	profile, err := p.client.GetProfile(ctx, tr.AccessToken)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// googleProvider adapts the Google client to Provider.
type googleProvider struct{ client *google.OAuth }

// Google wraps a Google OAuth client as a Flow provider.
func Google(client *google.OAuth) Provider { return googleProvider{client: client} }

func (googleProvider) Name() identity.Provider { return identity.ProviderGoogle }

func (p googleProvider) AuthURL(state string) string { return p.client.AuthURL(state) }

func (p googleProvider) FetchProfile(ctx context.Context, code string) (identity.Profile, error) {
	tr, err := p.client.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	profile, err := p.client.GetProfile(ctx, tr.AccessToken)
	if err != nil {
		return nil, err
	}
	return profile, nil
}
