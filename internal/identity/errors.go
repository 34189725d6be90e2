package identity

import "errors"

var (
	// ErrCommitFailed means the atomic session+user batch did not commit.
	// Recoverable: the caller may retry the whole sign-in attempt; the store
	// never retries internally and leaves no partial state behind.
	ErrCommitFailed = errors.New("identity: atomic write did not commit")

	// ErrSessionNotFound means the session key is absent. Normal for
	// anonymous or signed-out requests.
	ErrSessionNotFound = errors.New("identity: session not found")

	// ErrUserNotFound means the target user record does not exist.
	ErrUserNotFound = errors.New("identity: user not found")

	// ErrMissingUserForSession means a session key resolved to a nonexistent
	// user. Unreachable under correct atomic writes, so it signals external
	// tampering or a substrate consistency failure. Never treated as a plain
	// "no session".
	ErrMissingUserForSession = errors.New("identity: session references missing user")
)
