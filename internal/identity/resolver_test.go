package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/sessiond/internal/kv"
)

func TestResolveEmptySessionIsAnonymousFastPath(t *testing.T) {
	// The resolver must not touch the substrate at all for empty ids.
	resolver := NewResolver(NewStore(noReadSubstrate{t: t}))

	auth, err := resolver.Resolve(context.Background(), "")
	require.NoError(t, err)
	require.True(t, auth.Anonymous())
	require.Empty(t, auth.SessionID)
}

// noReadSubstrate fails the test on any read.
type noReadSubstrate struct {
	kv.Store
	t *testing.T
}

func (s noReadSubstrate) Get(ctx context.Context, key string) (string, error) {
	s.t.Fatalf("unexpected substrate read for key %q", key)
	return "", nil
}

func TestResolveFreshSignIn(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	resolver := NewResolver(store)

	require.NoError(t, store.StoreUser(ctx, "sess-1", githubUser("alice")))

	auth, err := resolver.Resolve(ctx, "sess-1")
	require.NoError(t, err)
	require.False(t, auth.Anonymous())
	require.Equal(t, "alice", auth.CurrentUser.UserID)
	require.Equal(t, "sess-1", auth.SessionID)
}

func TestResolveUnknownSessionIsAnonymous(t *testing.T) {
	store, _ := newTestStore(t)
	resolver := NewResolver(store)

	auth, err := resolver.Resolve(context.Background(), "unknown")
	require.NoError(t, err)
	require.True(t, auth.Anonymous())
}

func TestResolvePropagatesInvariantViolation(t *testing.T) {
	ctx := context.Background()
	store, substrate := newTestStore(t)
	resolver := NewResolver(store)

	require.NoError(t, store.StoreUser(ctx, "sess-1", githubUser("alice")))
	require.NoError(t, substrate.Delete(ctx, kv.Key("users", "alice")))

	_, err := resolver.Resolve(ctx, "sess-1")
	require.ErrorIs(t, err, ErrMissingUserForSession)
}
