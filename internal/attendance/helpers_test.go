package attendance

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

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
	policy := retry.Policy{Mode: retry.BackoffLinear, Initial: 5 * time.Millisecond, Max: 20 * time.Millisecond, MaxAttempts: 3}
	mgr := store.NewManager(cfg, policy)
	require.NoError(t, mgr.Migrate(t.Context()))
	return mgr
}

func seedUser(t *testing.T, mgr *store.Manager, username string, pin any) int64 {
	t.Helper()
	var id int64
	err := mgr.With(t.Context(), func(db *sql.DB) error {
		res, err := db.ExecContext(t.Context(),
			`INSERT INTO users (username, password, fullname, email, role, attendance_pin)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			username, "secret", "Test User", username+"@example.com", "employee", pin)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	require.NoError(t, err)
	return id
}

// seedLegacyOpenRow inserts an open record the way older imported data looks:
// date and wall-clock parts only, no check-in instant.
func seedLegacyOpenRow(t *testing.T, mgr *store.Manager, userID int64, date, checkInTime string) int64 {
	t.Helper()
	day, err := time.Parse(DateLayout, date)
	require.NoError(t, err)
	var id int64
	err = mgr.With(t.Context(), func(db *sql.DB) error {
		res, err := db.ExecContext(t.Context(), `
			INSERT INTO attendance
				(user_id, calendar_date, year, month, day, check_in_time,
				 status, is_present, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
			userID, date, day.Year(), int(day.Month()), day.Day(), checkInTime,
			string(StatusPresent), day.Unix(), day.Unix())
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	require.NoError(t, err)
	return id
}

func ptrTime(v time.Time) *time.Time { return &v }
