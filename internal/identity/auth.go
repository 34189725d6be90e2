package identity

import (
	"context"

	"github.com/dropDatabas3/sessiond/internal/observability/logger"
)

// Authenticator completes provider callbacks and sign-outs against the store.
// It performs a single attempt per call: when the atomic write does not
// commit, the caller decides whether to retry the whole provider handshake.
type Authenticator struct {
	store *Store
}

// NewAuthenticator creates an Authenticator over the given store.
func NewAuthenticator(store *Store) *Authenticator {
	return &Authenticator{store: store}
}

// CompleteSignIn normalizes the provider profile and durably binds the
// session to the canonical user. Idempotent for equivalent inputs.
func (a *Authenticator) CompleteSignIn(ctx context.Context, sessionID string, profile Profile) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Op("Authenticator.CompleteSignIn"),
		logger.Provider(string(profile.ProviderName())),
	)

	user := Normalize(profile)
	if err := a.store.StoreUser(ctx, sessionID, user); err != nil {
		log.Warn("sign-in write failed", logger.UserID(user.UserID), logger.Err(err))
		return err
	}

	log.Info("sign-in completed",
		logger.UserID(user.UserID),
		logger.SessionID(sessionID),
	)
	return nil
}

// SignOut removes the session. Always observably successful: removing an
// absent session is not an error, and the user record is never touched.
func (a *Authenticator) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := a.store.RemoveSession(ctx, sessionID); err != nil {
		return err
	}
	logger.From(ctx).Info("signed out",
		logger.Layer("service"),
		logger.Op("Authenticator.SignOut"),
		logger.SessionID(sessionID),
	)
	return nil
}
