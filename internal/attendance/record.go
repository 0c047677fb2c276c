// Package attendance implements the attendance record store: the typed
// record model, the repository, the check-in/check-out state machine, and the
// working-hours arithmetic.
package attendance

import (
	"time"
)

// Storage layouts for the denormalized date/time columns.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Status enumerates attendance record states.
type Status string

const (
	StatusPresent       Status = "Present"
	StatusAbsent        Status = "Absent"
	StatusSick          Status = "Sick"
	StatusPermission    Status = "Permission"
	StatusLate          Status = "Late"
	StatusNoInformation Status = "No Information"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusSick, StatusPermission, StatusLate, StatusNoInformation:
		return true
	}
	return false
}

// StatusFlags are boolean projections of Status, persisted for fast filtering.
type StatusFlags struct {
	IsPresent    bool
	IsAbsent     bool
	IsSick       bool
	IsPermission bool
	IsLate       bool
}

// Flags derives the boolean projection for a status.
func (s Status) Flags() StatusFlags {
	return StatusFlags{
		IsPresent:    s == StatusPresent,
		IsAbsent:     s == StatusAbsent,
		IsSick:       s == StatusSick,
		IsPermission: s == StatusPermission,
		IsLate:       s == StatusLate,
	}
}

// Record is one attendance row: created by a check-in, closed exactly once by
// a check-out, never reopened or deleted by this subsystem.
type Record struct {
	ID           int64
	UserID       int64
	CalendarDate string // YYYY-MM-DD, set once at check-in
	Year         int
	Month        int
	Day          int

	CheckInTime     string     // HH:MM:SS wall clock
	CheckInInstant  *time.Time // full timestamp; nil on legacy rows
	CheckOutTime    string     // empty until check-out
	CheckOutInstant *time.Time // nil while the record is open
	WorkingHours    *float64   // set once at check-out

	Status Status
	Flags  StatusFlags
	Notes  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open reports whether the record represents an active check-in: check-in
// information set, check-out not yet written. Legacy rows carry only the
// wall-clock time part.
func (r *Record) Open() bool {
	checkedIn := r.CheckInInstant != nil || r.CheckInTime != ""
	return checkedIn && r.CheckOutInstant == nil && r.CheckOutTime == ""
}

// NewCheckInRecord builds the record for a check-in at the given instant.
func NewCheckInRecord(userID int64, now time.Time) *Record {
	instant := now
	return &Record{
		UserID:         userID,
		CalendarDate:   now.Format(DateLayout),
		Year:           now.Year(),
		Month:          int(now.Month()),
		Day:            now.Day(),
		CheckInTime:    now.Format(TimeLayout),
		CheckInInstant: &instant,
		Status:         StatusPresent,
		Flags:          StatusPresent.Flags(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Session is the explicit authentication context passed into every state
// machine call; there is no process-wide session singleton.
type Session struct {
	UserID        int64
	Authenticated bool
}

// Valid reports whether the session denotes an authenticated user.
func (s Session) Valid() bool {
	return s.Authenticated && s.UserID > 0
}
