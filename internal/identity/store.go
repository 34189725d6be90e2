package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/sessiond/internal/kv"
)

// Logical table names on the substrate.
const (
	tableSessions = "sessions"
	tableUsers    = "users"
)

// Store owns the sessions and users tables. All writes to either table go
// through it; the resolver and authenticator hold no state of their own.
type Store struct {
	kv kv.Store

	// sessionTTL, when non-zero, is applied to session keys so the substrate
	// expires them. User records never expire.
	sessionTTL time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSessionTTL makes session keys expire after d. Zero disables expiry.
func WithSessionTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.sessionTTL = d }
}

// NewStore creates a Store over the given substrate.
func NewStore(substrate kv.Store, opts ...StoreOption) *Store {
	s := &Store{kv: substrate}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StoreUser writes the session record and the user record in one atomic
// batch: no observer ever sees one without the other. Re-running with the
// same inputs overwrites both records with identical content, so duplicate
// callback delivery is safe. A non-committing batch surfaces ErrCommitFailed
// and leaves no partial state; retrying is the caller's decision.
func (s *Store) StoreUser(ctx context.Context, sessionID string, user User) error {
	sessionJSON, err := json.Marshal(sessionRecord{UserID: user.UserID})
	if err != nil {
		return fmt.Errorf("identity: marshal session: %w", err)
	}
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("identity: marshal user: %w", err)
	}

	err = s.kv.Atomic(ctx,
		kv.SetOp(kv.Key(tableSessions, sessionID), string(sessionJSON), s.sessionTTL),
		kv.SetOp(kv.Key(tableUsers, user.UserID), string(userJSON), 0),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}
	return nil
}

// GetUserFromSession resolves a session id to its user. An absent session is
// ErrSessionNotFound. A session whose user record is gone is
// ErrMissingUserForSession: that state is unreachable under atomic writes, so
// it is surfaced as a violation instead of being masked as "no session".
func (s *Store) GetUserFromSession(ctx context.Context, sessionID string) (*User, error) {
	raw, err := s.kv.Get(ctx, kv.Key(tableSessions, sessionID))
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("identity: read session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("identity: decode session: %w", err)
	}

	user, err := s.GetUser(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %q", ErrMissingUserForSession, rec.UserID)
		}
		return nil, err
	}
	return user, nil
}

// RemoveSession deletes the session key only. The user record stays: the user
// may hold other sessions or sign back in later. Idempotent.
func (s *Store) RemoveSession(ctx context.Context, sessionID string) error {
	return s.kv.Delete(ctx, kv.Key(tableSessions, sessionID))
}

// GetUser reads a user record by its natural key.
func (s *Store) GetUser(ctx context.Context, userID string) (*User, error) {
	raw, err := s.kv.Get(ctx, kv.Key(tableUsers, userID))
	if err != nil {
		if kv.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("identity: read user: %w", err)
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("identity: decode user: %w", err)
	}
	return &user, nil
}

// UpdateUser applies a shallow merge of the patch returned by mutate onto the
// stored profile data and writes the record back. The read-modify-write is
// deliberately not transactional: concurrent profile edits are last-writer-
// wins. Session-linked consistency is not needed on this path.
func (s *Store) UpdateUser(ctx context.Context, userID string, mutate func(User) UserPatch) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	patch := mutate(*user)
	if patch.Username != nil {
		user.Data.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Data.Email = *patch.Email
	}
	if patch.ProfilePictureURL != nil {
		user.Data.ProfilePictureURL = *patch.ProfilePictureURL
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("identity: marshal user: %w", err)
	}
	return s.kv.Set(ctx, kv.Key(tableUsers, userID), string(userJSON), 0)
}
