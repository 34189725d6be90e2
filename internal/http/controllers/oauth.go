// Package controllers contains the HTTP controllers for the sign-in flow and
// the session-gated endpoints.
package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/sessiond/internal/http/httperr"
	"github.com/dropDatabas3/sessiond/internal/identity"
	"github.com/dropDatabas3/sessiond/internal/metrics"
	"github.com/dropDatabas3/sessiond/internal/oauth"
	"github.com/dropDatabas3/sessiond/internal/observability/logger"
)

// CookieConfig describes the session cookie emitted on sign-in.
type CookieConfig struct {
	Name     string
	Domain   string
	SameSite string
	Secure   bool
	TTL      time.Duration
}

// OAuth handles the sign-in, callback, and sign-out endpoints.
type OAuth struct {
	flow   *oauth.Flow
	cookie CookieConfig
}

// NewOAuth creates the OAuth controller.
func NewOAuth(flow *oauth.Flow, cookie CookieConfig) *OAuth {
	if cookie.Name == "" {
		cookie.Name = "sid"
	}
	return &OAuth{flow: flow, cookie: cookie}
}

// SignIn handles GET /oauth/{provider}/signin: redirects to the provider's
// authorization page.
func (c *OAuth) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := identity.Provider(chi.URLParam(r, "provider"))

	redirectURL, err := c.flow.StartSignIn(ctx, provider)
	if err != nil {
		if errors.Is(err, oauth.ErrProviderUnknown) {
			httperr.WriteError(w, httperr.ErrNotFound.WithDetail("provider not enabled"))
			return
		}
		logger.From(ctx).Error("sign-in start failed",
			logger.Layer("controller"),
			logger.Op("OAuth.SignIn"),
			logger.Provider(string(provider)),
			logger.Err(err),
		)
		httperr.WriteError(w, httperr.ErrInternal)
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// Callback handles GET /oauth/{provider}/callback: completes the handshake,
// binds the new session, and sets the session cookie. On any failure no
// session is established and no cookie is set.
func (c *OAuth) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := identity.Provider(chi.URLParam(r, "provider"))
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("OAuth.Callback"),
		logger.Provider(string(provider)),
	)

	q := r.URL.Query()
	if idpError := strings.TrimSpace(q.Get("error")); idpError != "" {
		log.Warn("provider returned error",
			logger.String("error", idpError),
			logger.String("description", q.Get("error_description")),
		)
		metrics.SignIns.WithLabelValues(string(provider), "provider_error").Inc()
		httperr.WriteError(w, httperr.ErrBadRequest.WithDetail("idp_error: "+idpError))
		return
	}

	state := strings.TrimSpace(q.Get("state"))
	code := strings.TrimSpace(q.Get("code"))
	if state == "" || code == "" {
		httperr.WriteError(w, httperr.ErrBadRequest.WithDetail("state and code required"))
		return
	}

	sessionID, err := c.flow.HandleCallback(ctx, provider, state, code)
	if err != nil {
		log.Warn("callback failed", logger.Err(err))
		metrics.SignIns.WithLabelValues(string(provider), "failure").Inc()

		switch {
		case errors.Is(err, oauth.ErrProviderUnknown):
			httperr.WriteError(w, httperr.ErrNotFound.WithDetail("provider not enabled"))
		case errors.Is(err, oauth.ErrStateInvalid),
			errors.Is(err, oauth.ErrStateExpired),
			errors.Is(err, oauth.ErrStateReplayed),
			errors.Is(err, oauth.ErrStateProvider):
			httperr.WriteError(w, httperr.ErrBadRequest.WithDetail("invalid or expired state"))
		case errors.Is(err, identity.ErrCommitFailed):
			// The atomic write left no partial state; the whole handshake is
			// the retry unit.
			httperr.WriteError(w, httperr.ErrUnavailable.WithDetail("sign-in could not be persisted"))
		case errors.Is(err, oauth.ErrExchangeFailed):
			httperr.WriteError(w, httperr.ErrInternal.WithDetail("code exchange failed"))
		default:
			httperr.WriteError(w, httperr.ErrInternal)
		}
		return
	}

	metrics.SignIns.WithLabelValues(string(provider), "success").Inc()
	http.SetCookie(w, c.buildSessionCookie(sessionID))
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, "/", http.StatusFound)
}

// SignOut handles GET /oauth/{provider}/signout. Observably always
// successful: the cookie is cleared and the session removed even when it no
// longer exists.
func (c *OAuth) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var sessionID string
	if cookie, err := r.Cookie(c.cookie.Name); err == nil {
		sessionID = cookie.Value
	}

	if err := c.flow.SignOut(ctx, sessionID); err != nil {
		// Substrate failure on delete: log it, but sign-out still clears the
		// cookie and reports success to the caller.
		logger.From(ctx).Error("session removal failed",
			logger.Layer("controller"),
			logger.Op("OAuth.SignOut"),
			logger.Err(err),
		)
	}
	metrics.SignOuts.Inc()

	http.SetCookie(w, c.expiredSessionCookie())
	http.Redirect(w, r, "/", http.StatusFound)
}

func (c *OAuth) buildSessionCookie(sessionID string) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	switch c.cookie.SameSite {
	case "Strict":
		sameSite = http.SameSiteStrictMode
	case "None":
		sameSite = http.SameSiteNoneMode
	}

	cookie := &http.Cookie{
		Name:     c.cookie.Name,
		Value:    sessionID,
		Path:     "/",
		Domain:   c.cookie.Domain,
		HttpOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: sameSite,
	}
	if c.cookie.TTL > 0 {
		cookie.MaxAge = int(c.cookie.TTL.Seconds())
		cookie.Expires = time.Now().Add(c.cookie.TTL)
	}
	return cookie
}

func (c *OAuth) expiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.cookie.Name,
		Value:    "",
		Path:     "/",
		Domain:   c.cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.cookie.Secure,
	}
}
