package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "cookie", cfg.Session.Driver)
	assert.Equal(t, "warbler_session", cfg.Session.CookieName)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  port: 9000\nsession:\n  driver: redis\n  ttl: 2h\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("WARBLER_SERVER_PORT", "9100")
	t.Setenv("WARBLER_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Session.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("database:\n  driver: mysql\n"), 0o600))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestLoadRejectsWeakSecretInRelease(t *testing.T) {
	t.Setenv("WARBLER_SERVER_MODE", "release")

	_, err := Load(t.TempDir())
	assert.ErrorContains(t, err, "session.secret")

	t.Setenv("WARBLER_SESSION_SECRET", "too-short")
	_, err = Load(t.TempDir())
	assert.ErrorContains(t, err, "session.secret")

	secret := strings.Repeat("s", MinSessionSecretLen)
	t.Setenv("WARBLER_SESSION_SECRET", secret)
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, secret, cfg.Session.Secret)
}

func TestLoadRedisSessionIgnoresSecretStrength(t *testing.T) {
	t.Setenv("WARBLER_SERVER_MODE", "release")
	t.Setenv("WARBLER_SESSION_DRIVER", "redis")

	_, err := Load(t.TempDir())
	assert.NoError(t, err)
}
