package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8084", cfg.Server.Port)
	assert.Equal(t, "data/uploads", cfg.Uploads.Dir)
	assert.Equal(t, int64(10), cfg.Uploads.MaxSizeMB)
	assert.Equal(t, "03:30", cfg.Cleanup.DailyRunTime)
	assert.False(t, cfg.Cleanup.Enabled)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	raw := `
server:
  port: "9000"
database:
  type: postgres
  postgres:
    host: pg.internal
    port: 5433
    sslmode: require
uploads:
  dir: /var/lib/uploads
  max_size_mb: 25
session:
  secret: test-secret
  cookie_name: admin_session
  max_age_hours: 48
cleanup:
  enabled: true
  daily_run_time: "04:15"
  grace_minutes: 120
  max_deletion_count: 50
  dry_run: true
rate_limit:
  enabled: false
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "pg.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, 5433, cfg.Database.Postgres.Port)
	assert.Equal(t, "require", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "/var/lib/uploads", cfg.Uploads.Dir)
	assert.Equal(t, int64(25*1024*1024), cfg.Uploads.MaxUploadBytes())
	assert.Equal(t, "admin_session", cfg.Session.CookieName)
	assert.Equal(t, 48*time.Hour, cfg.Session.SessionMaxAge())
	assert.True(t, cfg.Cleanup.Enabled)
	assert.Equal(t, "04:15", cfg.Cleanup.DailyRunTime)
	assert.Equal(t, 120, cfg.Cleanup.GraceMinutes)
	assert.True(t, cfg.Cleanup.DryRun)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadConfigPartialFileKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"8085\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8085", cfg.Server.Port)
	assert.Equal(t, "data/uploads", cfg.Uploads.Dir, "unset sections keep their defaults")
	assert.Equal(t, "re_session", cfg.Session.CookieName)
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
