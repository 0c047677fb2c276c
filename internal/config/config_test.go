package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/timeclock/internal/errors"
	"git.home.luguber.info/inful/timeclock/internal/retry"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timeclock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "database:\n  path: /tmp/att.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/att.db", cfg.Database.Path)
	assert.Equal(t, "10s", cfg.Database.BusyTimeout)
	assert.Equal(t, "30s", cfg.Database.AcquireTimeout)
	assert.Equal(t, "linear", cfg.Retry.Backoff)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "timeclock.attendance", cfg.Events.Subject)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestLoadInvalidDuration(t *testing.T) {
	path := writeConfig(t, "database:\n  path: /tmp/att.db\n  busy_timeout: soon\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestLoadEventsRequireURL(t *testing.T) {
	path := writeConfig(t, "database:\n  path: /tmp/att.db\nevents:\n  enabled: true\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats_url")
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TC_TEST_DB_DIR", "/var/lib/timeclock")
	path := writeConfig(t, "database:\n  path: ${TC_TEST_DB_DIR}/att.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/timeclock/att.db", cfg.Database.Path)
}

func TestPolicyFromConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/att.db
retry:
  backoff: exponential
  initial_delay: 200ms
  max_delay: 2s
  max_attempts: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	p := cfg.Policy()
	assert.Equal(t, retry.BackoffExponential, p.Mode)
	assert.Equal(t, 200*time.Millisecond, p.Initial)
	assert.Equal(t, 2*time.Second, p.Max)
	assert.Equal(t, 4, p.MaxAttempts)
}

func TestDurationGetters(t *testing.T) {
	db := DatabaseConfig{BusyTimeout: "5s", AcquireTimeout: "12s"}
	assert.Equal(t, 5*time.Second, db.BusyTimeoutDuration())
	assert.Equal(t, 12*time.Second, db.AcquireTimeoutDuration())

	// Unparseable values fall back rather than panic.
	db = DatabaseConfig{BusyTimeout: "", AcquireTimeout: "bogus"}
	assert.Equal(t, 10*time.Second, db.BusyTimeoutDuration())
	assert.Equal(t, 30*time.Second, db.AcquireTimeoutDuration())
}

func TestWriteExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeclock.yaml")
	require.NoError(t, WriteExample(path, false))

	// Refuses to clobber without force.
	require.Error(t, WriteExample(path, false))
	require.NoError(t, WriteExample(path, true))

	// The example must load cleanly.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/timeclock.db", cfg.Database.Path)
	assert.True(t, cfg.Maintenance.Enabled)
}
