package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/sessiond/internal/kv"
)

func newTestStore(t *testing.T) (*Store, kv.Store) {
	t.Helper()
	substrate := kv.NewMemory("test")
	return NewStore(substrate), substrate
}

func githubUser(login string) User {
	return Normalize(GitHubProfile{Login: login, AvatarURL: "https://example.com/a.png"})
}

func TestStoreUserWritesBothRecords(t *testing.T) {
	ctx := context.Background()
	store, substrate := newTestStore(t)

	require.NoError(t, store.StoreUser(ctx, "sess-1", githubUser("alice")))

	// Both keys must be observable directly on the substrate.
	sessPresent, err := substrate.Exists(ctx, kv.Key("sessions", "sess-1"))
	require.NoError(t, err)
	require.True(t, sessPresent)

	userPresent, err := substrate.Exists(ctx, kv.Key("users", "alice"))
	require.NoError(t, err)
	require.True(t, userPresent)
}

// failingSubstrate refuses atomic batches, simulating substrate contention.
type failingSubstrate struct {
	kv.Store
}

func (f failingSubstrate) Atomic(ctx context.Context, ops ...kv.Op) error {
	return kv.ErrTxFailed
}

func TestStoreUserCommitFailureLeavesNoPartialState(t *testing.T) {
	ctx := context.Background()
	substrate := kv.NewMemory("test")
	store := NewStore(failingSubstrate{Store: substrate})

	err := store.StoreUser(ctx, "sess-1", githubUser("alice"))
	require.ErrorIs(t, err, ErrCommitFailed)

	sessPresent, err := substrate.Exists(ctx, kv.Key("sessions", "sess-1"))
	require.NoError(t, err)
	require.False(t, sessPresent)

	userPresent, err := substrate.Exists(ctx, kv.Key("users", "alice"))
	require.NoError(t, err)
	require.False(t, userPresent)
}

func TestStoreUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.StoreUser(ctx, "sess-1", githubUser("alice")))
	first, err := store.GetUserFromSession(ctx, "sess-1")
	require.NoError(t, err)

	require.NoError(t, store.StoreUser(ctx, "sess-1", githubUser("alice")))
	second, err := store.GetUserFromSession(ctx, "sess-1")
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestGetUserFromSessionAbsent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.GetUserFromSession(ctx, "nope")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetUserFromSessionMissingUserIsViolation(t *testing.T) {
	ctx := context.Background()
	store, substrate := newTestStore(t)

	require.NoError(t, store.StoreUser(ctx, "sess-1", githubUser("alice")))

	// Simulate external tampering: remove the user record out from under the
	// session.
	require.NoError(t, substrate.Delete(ctx, kv.Key("users", "alice")))

	_, err := store.GetUserFromSession(ctx, "sess-1")
	require.ErrorIs(t, err, ErrMissingUserForSession)
}

func TestRemoveSessionIsIdempotentAndKeepsUser(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.StoreUser(ctx, "sess-1", githubUser("alice")))

	require.NoError(t, store.RemoveSession(ctx, "sess-1"))
	require.NoError(t, store.RemoveSession(ctx, "sess-1"))
	require.NoError(t, store.RemoveSession(ctx, "never-existed"))

	// The user record stays behind.
	user, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", user.UserID)

	_, err = store.GetUserFromSession(ctx, "sess-1")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetUserAbsent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.GetUser(ctx, "nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUserMergesPatch(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.StoreUser(ctx, "sess-1", User{
		UserID: "a",
		Type:   ProviderGitHub,
		Data:   UserData{Username: "a", ProfilePictureURL: "p1"},
	}))

	newPic := "p2"
	require.NoError(t, store.UpdateUser(ctx, "a", func(User) UserPatch {
		return UserPatch{ProfilePictureURL: &newPic}
	}))

	user, err := store.GetUser(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "a", user.Data.Username, "unrelated fields must be preserved")
	require.Equal(t, "p2", user.Data.ProfilePictureURL)
}

func TestUpdateUserAbsent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	err := store.UpdateUser(ctx, "nobody", func(User) UserPatch { return UserPatch{} })
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUserSeesCurrentRecord(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.StoreUser(ctx, "sess-1", githubUser("alice")))

	var seen User
	require.NoError(t, store.UpdateUser(ctx, "alice", func(u User) UserPatch {
		seen = u
		return UserPatch{}
	}))
	require.Equal(t, "alice", seen.UserID)
}
