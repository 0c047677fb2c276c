package maintenance

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/timeclock/internal/config"
	"git.home.luguber.info/inful/timeclock/internal/retry"
	"git.home.luguber.info/inful/timeclock/internal/store"
)

func newTestManager(t *testing.T) *store.Manager {
	t.Helper()
	cfg := config.DatabaseConfig{
		Path:           filepath.Join(t.TempDir(), "timeclock.db"),
		BusyTimeout:    "1s",
		AcquireTimeout: "5s",
	}
	mgr := store.NewManager(cfg, retry.DefaultPolicy())
	require.NoError(t, mgr.Migrate(t.Context()))
	return mgr
}

func TestNewSchedulerRejectsBadInterval(t *testing.T) {
	_, err := NewScheduler(newTestManager(t), 0)
	assert.Error(t, err)
	_, err = NewScheduler(newTestManager(t), -time.Minute)
	assert.Error(t, err)
}

func TestRunOnce(t *testing.T) {
	mgr := newTestManager(t)
	s, err := NewScheduler(mgr, time.Hour)
	require.NoError(t, err)

	// Both pragmas must succeed against a migrated store.
	require.NoError(t, s.RunOnce(t.Context()))
	require.NoError(t, s.RunOnce(t.Context()))
}

func TestStartStop(t *testing.T) {
	mgr := newTestManager(t)
	s, err := NewScheduler(mgr, time.Hour)
	require.NoError(t, err)

	require.NoError(t, s.Start(t.Context()))
	require.NoError(t, s.Stop())
}
