package identity

import (
	"context"
	"errors"
)

// Auth is the per-request authentication state.
type Auth struct {
	CurrentUser *User
	SessionID   string
}

// Anonymous reports whether no user is attached.
func (a Auth) Anonymous() bool { return a.CurrentUser == nil }

// Resolver turns an incoming session id into the current user. It is a pure
// function over the store, safe to call once per request.
type Resolver struct {
	store *Store
}

// NewResolver creates a Resolver over the given store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the authentication state for a session id. An empty id is
// the anonymous fast path and never touches the substrate. An unknown session
// resolves to anonymous. A store-level invariant violation
// (ErrMissingUserForSession) propagates unchanged; the resolver does not mask
// it.
func (r *Resolver) Resolve(ctx context.Context, sessionID string) (Auth, error) {
	if sessionID == "" {
		return Auth{}, nil
	}

	user, err := r.store.GetUserFromSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Auth{}, nil
		}
		return Auth{}, err
	}
	return Auth{CurrentUser: user, SessionID: sessionID}, nil
}
