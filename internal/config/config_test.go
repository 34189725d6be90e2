package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
app:
  env: prod
server:
  addr: ":9000"
  base_url: https://auth.example.com
kv:
  driver: redis
  addr: localhost:6379
  prefix: sess
session:
  ttl: 24h
state:
  secret: super-secret
providers:
  github:
    enabled: true
    client_id: gh-id
    client_secret: gh-secret
`)

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "prod", c.App.Env)
	require.Equal(t, ":9000", c.Server.Addr)
	require.Equal(t, "redis", c.KV.Driver)
	require.Equal(t, "sess", c.KV.Prefix)
	require.Equal(t, 24*time.Hour, c.Session.TTL)
	require.True(t, c.Providers.GitHub.Enabled)

	// Redirect URL derived from base_url when not set.
	require.Equal(t, "https://auth.example.com/oauth/github/callback", c.Providers.GitHub.RedirectURL)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STATE_SECRET", "s")

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8000", c.Server.Addr)
	require.Equal(t, "memory", c.KV.Driver)
	require.Equal(t, "sessiond", c.KV.Prefix)
	require.Equal(t, "sid", c.Session.CookieName)
	require.Equal(t, "Lax", c.Session.SameSite)
	require.Equal(t, 10*time.Minute, c.State.TTL)
	require.Equal(t, "info", c.Log.Level)
	require.Zero(t, c.Session.TTL)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
state:
  secret: from-file
`)
	t.Setenv("SERVER_ADDR", ":7000")
	t.Setenv("STATE_SECRET", "from-env")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("GOOGLE_CLIENT_ID", "g-id")

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7000", c.Server.Addr)
	require.Equal(t, "from-env", c.State.Secret)
	require.Equal(t, 30*time.Minute, c.Session.TTL)

	// Setting the client id enables the provider.
	require.True(t, c.Providers.Google.Enabled)
	require.Equal(t, "http://localhost:8000/oauth/google/callback", c.Providers.Google.RedirectURL)
}

func TestLoadRequiresStateSecret(t *testing.T) {
	t.Setenv("STATE_SECRET", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "state.secret")
}
