package identity

// Profile is a provider profile payload that can be normalized into the
// canonical User. Each provider client returns its own concrete type, so the
// variant is decided by the caller rather than inferred from field shapes.
type Profile interface {
	// Normalize maps the provider payload to the canonical record. Pure and
	// total: it never fails and performs no I/O.
	Normalize() User

	// ProviderName returns the provenance tag.
	ProviderName() Provider
}

// GitHubProfile is the subset of the GitHub /user payload this system keeps.
type GitHubProfile struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// ProviderName implements Profile.
func (GitHubProfile) ProviderName() Provider { return ProviderGitHub }

// Normalize implements Profile. The GitHub profile endpoint used here does
// not return an email, so Data.Email stays empty.
func (p GitHubProfile) Normalize() User {
	return User{
		UserID: p.Login,
		Type:   ProviderGitHub,
		Data: UserData{
			Username:          p.Login,
			ProfilePictureURL: p.AvatarURL,
		},
	}
}

// GoogleProfile is the subset of the Google userinfo payload this system
// keeps. Email is empty when the email scope was not granted.
type GoogleProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Email   string `json:"email,omitempty"`
}

// ProviderName implements Profile.
func (GoogleProfile) ProviderName() Provider { return ProviderGoogle }

// Normalize implements Profile. The email is preferred as the natural key for
// stability; the display name is only a fallback.
func (p GoogleProfile) Normalize() User {
	userID := p.Email
	if userID == "" {
		userID = p.Name
	}
	return User{
		UserID: userID,
		Type:   ProviderGoogle,
		Data: UserData{
			Username:          p.Name,
			Email:             p.Email,
			ProfilePictureURL: p.Picture,
		},
	}
}

// Normalize converts any provider profile to the canonical User.
func Normalize(p Profile) User {
	return p.Normalize()
}
