package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompleteSignInThenResolve(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	auth := NewAuthenticator(store)
	resolver := NewResolver(store)

	profile := GoogleProfile{ID: "1", Name: "Bob", Picture: "p", Email: "bob@x.com"}
	require.NoError(t, auth.CompleteSignIn(ctx, "sess-1", profile))

	state, err := resolver.Resolve(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, "bob@x.com", state.CurrentUser.UserID)
}

func TestCompleteSignInTwiceIsSafe(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	auth := NewAuthenticator(store)

	profile := GitHubProfile{Login: "alice", AvatarURL: "u1"}
	require.NoError(t, auth.CompleteSignIn(ctx, "sess-1", profile))
	first, err := store.GetUserFromSession(ctx, "sess-1")
	require.NoError(t, err)

	// Duplicate callback delivery overwrites with identical content.
	require.NoError(t, auth.CompleteSignIn(ctx, "sess-1", profile))
	second, err := store.GetUserFromSession(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSignOutIsAlwaysSuccessful(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	auth := NewAuthenticator(store)

	require.NoError(t, auth.CompleteSignIn(ctx, "sess-1", GitHubProfile{Login: "alice"}))
	require.NoError(t, auth.SignOut(ctx, "sess-1"))
	require.NoError(t, auth.SignOut(ctx, "sess-1"))
	require.NoError(t, auth.SignOut(ctx, ""))

	// The user survives sign-out.
	user, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", user.UserID)
}
