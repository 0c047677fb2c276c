package store

import (
	"context"
	"database/sql"
	"log/slog"

	"git.home.luguber.info/inful/timeclock/internal/errors"
	"git.home.luguber.info/inful/timeclock/internal/logfields"
)

// schema creates the tables this subsystem touches. The users table is owned
// by the identity subsystem; it is created here only if absent so a fresh
// store is usable before that subsystem has run.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	password TEXT NOT NULL,
	fullname TEXT NOT NULL,
	email TEXT UNIQUE NOT NULL,
	role TEXT NOT NULL,
	attendance_pin TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_login TIMESTAMP
);

CREATE TABLE IF NOT EXISTS attendance (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	calendar_date TEXT NOT NULL,
	year INTEGER NOT NULL,
	month INTEGER NOT NULL,
	day INTEGER NOT NULL,
	check_in_time TEXT,
	check_in_instant INTEGER,
	check_out_time TEXT,
	check_out_instant INTEGER,
	working_hours REAL,
	status TEXT NOT NULL,
	is_present INTEGER NOT NULL DEFAULT 0,
	is_absent INTEGER NOT NULL DEFAULT 0,
	is_sick INTEGER NOT NULL DEFAULT 0,
	is_permission INTEGER NOT NULL DEFAULT 0,
	is_late INTEGER NOT NULL DEFAULT 0,
	notes TEXT,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users (id)
);

CREATE INDEX IF NOT EXISTS idx_attendance_user_date ON attendance(user_id, calendar_date);
CREATE INDEX IF NOT EXISTS idx_attendance_user_open ON attendance(user_id, check_out_instant);

CREATE TABLE IF NOT EXISTS attendance_status (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE NOT NULL,
	description TEXT,
	color TEXT,
	is_default INTEGER NOT NULL DEFAULT 0
);
`

// statusSeed mirrors the canonical status lookup rows; INSERT OR IGNORE keeps
// the migration idempotent.
var statusSeed = []struct {
	name, description, color string
	isDefault                int
}{
	{"Present", "Employee was present for work", "#4CAF50", 1},
	{"Absent", "Employee was absent without notification", "#F44336", 0},
	{"Sick", "Employee was absent due to illness", "#FF9800", 0},
	{"Permission", "Employee was absent with permission", "#2196F3", 0},
	{"Late", "Employee arrived late", "#FFC107", 0},
	{"No Information", "No attendance information available", "#757575", 0},
}

// Migrate creates the attendance schema and seeds lookup data. Safe to run on
// every startup.
func (m *Manager) Migrate(ctx context.Context) error {
	return m.With(ctx, func(db *sql.DB) error {
		return MigrateDB(ctx, db)
	})
}

// MigrateDB applies the schema through an already-open handle.
func MigrateDB(ctx context.Context, db Querier) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.StorageError(err, "failed to initialize attendance schema")
	}
	for _, s := range statusSeed {
		_, err := db.ExecContext(ctx,
			"INSERT OR IGNORE INTO attendance_status (name, description, color, is_default) VALUES (?, ?, ?, ?)",
			s.name, s.description, s.color, s.isDefault,
		)
		if err != nil {
			return errors.StorageError(err, "failed to seed attendance statuses")
		}
	}
	slog.Debug("Attendance schema ready", logfields.Op("migrate"))
	return nil
}
