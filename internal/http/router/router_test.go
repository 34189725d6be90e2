package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/sessiond/internal/http/controllers"
	"github.com/dropDatabas3/sessiond/internal/identity"
	"github.com/dropDatabas3/sessiond/internal/kv"
	"github.com/dropDatabas3/sessiond/internal/oauth"
	"github.com/dropDatabas3/sessiond/internal/oauth/github"
)

// testEnv wires a full router against a memory substrate and a fake GitHub.
type testEnv struct {
	handler   http.Handler
	store     *identity.Store
	substrate kv.Store
	provider  *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"login":      "alice",
			"avatar_url": "https://avatars.example/alice",
			"html_url":   "https://github.com/alice",
		})
	})
	provider := httptest.NewServer(mux)
	t.Cleanup(provider.Close)

	client := github.New("id", "secret", "http://localhost:8000/oauth/github/callback")
	client.AuthEndpoint = provider.URL + "/login/oauth/authorize"
	client.TokenEndpoint = provider.URL + "/login/oauth/access_token"
	client.UserEndpoint = provider.URL + "/user"

	substrate := kv.NewMemory("test")
	store := identity.NewStore(substrate)
	signer := oauth.NewStateSigner([]byte("secret"), "http://localhost:8000", time.Minute)
	flow := oauth.NewFlow(signer, identity.NewAuthenticator(store), oauth.GitHub(client))

	handler := New(Deps{
		OAuth:      controllers.NewOAuth(flow, controllers.CookieConfig{Name: "sid", SameSite: "Lax"}),
		Health:     controllers.NewHealth(substrate),
		Resolver:   identity.NewResolver(store),
		CookieName: "sid",
	})
	return &testEnv{handler: handler, store: store, substrate: substrate, provider: provider}
}

// signIn drives signin then callback and returns the session cookie.
func (e *testEnv) signIn(t *testing.T) *http.Cookie {
	t.Helper()

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/oauth/github/signin", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest("GET",
		"/oauth/github/callback?state="+url.QueryEscape(state)+"&code=c1", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" && c.Value != "" {
			return c
		}
	}
	t.Fatal("callback set no session cookie")
	return nil
}

func TestSignInRedirectsToProvider(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/oauth/github/signin", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/login/oauth/authorize", loc.Path)
	require.Equal(t, "id", loc.Query().Get("client_id"))
	require.NotEmpty(t, loc.Query().Get("state"))
}

func TestSignInUnknownProvider(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/oauth/gitlab/signin", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCallbackEstablishesSession(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t)

	user, err := env.store.GetUserFromSession(context.Background(), cookie.Value)
	require.NoError(t, err)
	require.Equal(t, "alice", user.UserID)
}

func TestCallbackRejectsForgedState(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest("GET",
		"/oauth/github/callback?state=forged&code=c1", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeWithSession(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t)

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var user identity.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "alice", user.UserID)
	require.Equal(t, identity.ProviderGitHub, user.Type)
}

func TestMeWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeUnknownSessionIsAnonymous(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "never-issued"})
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeInvariantViolationIsServerError(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t)

	// Remove the user record out from under the live session.
	require.NoError(t, env.substrate.Delete(context.Background(), kv.Key("users", "alice")))

	req := httptest.NewRequest("GET", "/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSignOutRemovesSession(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t)

	req := httptest.NewRequest("GET", "/oauth/github/signout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)

	// The cookie is expired in the response.
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" && c.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared, "signout must expire the session cookie")

	// The session is gone, the user record stays.
	_, err := env.store.GetUserFromSession(context.Background(), cookie.Value)
	require.ErrorIs(t, err, identity.ErrSessionNotFound)
	user, err := env.store.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", user.UserID)
}

func TestSignOutWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/oauth/github/signout", nil))
	require.Equal(t, http.StatusFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
