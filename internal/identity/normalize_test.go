package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeGitHub(t *testing.T) {
	user := Normalize(GitHubProfile{
		Login:     "alice",
		AvatarURL: "u1",
		HTMLURL:   "h",
	})

	require.Equal(t, "alice", user.UserID)
	require.Equal(t, ProviderGitHub, user.Type)
	require.Equal(t, "alice", user.Data.Username)
	require.Empty(t, user.Data.Email)
	require.Equal(t, "u1", user.Data.ProfilePictureURL)
}

func TestNormalizeGoogleWithEmail(t *testing.T) {
	user := Normalize(GoogleProfile{
		ID:      "1",
		Name:    "Bob",
		Picture: "p",
		Email:   "bob@x.com",
	})

	require.Equal(t, "bob@x.com", user.UserID)
	require.Equal(t, ProviderGoogle, user.Type)
	require.Equal(t, "Bob", user.Data.Username)
	require.Equal(t, "bob@x.com", user.Data.Email)
	require.Equal(t, "p", user.Data.ProfilePictureURL)
}

func TestNormalizeGoogleWithoutEmail(t *testing.T) {
	// The email scope was not granted: the display name is the fallback key.
	user := Normalize(GoogleProfile{
		ID:      "1",
		Name:    "Bob",
		Picture: "p",
	})

	require.Equal(t, "Bob", user.UserID)
	require.Empty(t, user.Data.Email)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	profile := GitHubProfile{Login: "alice", AvatarURL: "u1", HTMLURL: "h"}
	require.Equal(t, Normalize(profile), Normalize(profile))
}
