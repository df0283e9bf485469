package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	err := os.WriteFile(path, []byte(`
env: dev
dsn: postgres://u:p@localhost:5432/db
token:
  secret: s3cret
session:
  secret: sess
admin:
  legacy_fallback: true
`), 0o644)
	require.NoError(t, err)

	cfg, err := LoadPath(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "s3cret", cfg.Token.Secret)
	assert.Equal(t, 24*time.Hour, cfg.Token.AdminTTL)
	assert.Equal(t, 10*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, "memory", cfg.OTP.Store)
	assert.Equal(t, 50, cfg.Gallery.DefaultDownloadLimit)
	assert.True(t, cfg.Admin.LegacyFallback)
	assert.False(t, cfg.Twilio.Enabled())
}

func TestLoadPath_Missing(t *testing.T) {
	_, err := LoadPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
