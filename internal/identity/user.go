// Package identity holds the canonical user model, the provider profile
// normalizer, and the session-linked store built on the kv substrate.
package identity

// Provider tags the origin of a canonical user. Immutable after creation.
type Provider string

const (
	ProviderGitHub Provider = "github"
	ProviderGoogle Provider = "google"
)

// UserData carries the mutable profile fields of a user.
type UserData struct {
	Username          string `json:"username"`
	Email             string `json:"email,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl"`
}

// User is the provider-independent identity record. UserID is the stable
// natural key: the GitHub login, or the Google email (display name when the
// email scope was not granted).
type User struct {
	UserID string   `json:"userId"`
	Type   Provider `json:"type"`
	Data   UserData `json:"data"`
}

// UserPatch is a shallow partial update of UserData. Nil fields are left
// untouched by UpdateUser.
type UserPatch struct {
	Username          *string
	Email             *string
	ProfilePictureURL *string
}

// sessionRecord is the stored value under the sessions table.
type sessionRecord struct {
	UserID string `json:"userId"`
}
