package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyUserID     = "user_id"
	KeyRecordID   = "record_id"
	KeyOp         = "op"
	KeyOpID       = "op_id"
	KeyAttempt    = "attempt"
	KeyDate       = "calendar_date"
	KeyHours      = "working_hours"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeySubject    = "subject"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func UserID(id int64) slog.Attr      { return slog.Int64(KeyUserID, id) }
func RecordID(id int64) slog.Attr    { return slog.Int64(KeyRecordID, id) }
func Op(name string) slog.Attr       { return slog.String(KeyOp, name) }
func OpID(id string) slog.Attr       { return slog.String(KeyOpID, id) }
func Attempt(n int) slog.Attr        { return slog.Int(KeyAttempt, n) }
func Date(d string) slog.Attr        { return slog.String(KeyDate, d) }
func Hours(h float64) slog.Attr      { return slog.Float64(KeyHours, h) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr        { return slog.String(KeyPath, p) }
func Subject(s string) slog.Attr     { return slog.String(KeySubject, s) }
func Error(err error) slog.Attr {
	if err == nil { return slog.String(KeyError, "") }
	return slog.String(KeyError, err.Error())
}
