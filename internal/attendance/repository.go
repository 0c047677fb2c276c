package attendance

import (
	"context"
	"database/sql"
	"time"

	"git.home.luguber.info/inful/timeclock/internal/errors"
	"git.home.luguber.info/inful/timeclock/internal/store"
)

// Repository provides typed CRUD over attendance rows. It holds no business
// rules and no connection state: every method runs against the Querier it is
// handed, so callers choose whether queries run standalone or inside the
// state machine's transaction.
type Repository struct{}

// NewRepository creates an attendance repository.
func NewRepository() *Repository {
	return &Repository{}
}

const recordColumns = `id, user_id, calendar_date, year, month, day,
	check_in_time, check_in_instant, check_out_time, check_out_instant,
	working_hours, status, is_present, is_absent, is_sick, is_permission, is_late,
	notes, created_at, updated_at`

// openPredicate matches records with check-in information and no check-out.
// Legacy rows lack the full instant and carry only the wall-clock time part.
const openPredicate = `(check_in_instant IS NOT NULL OR check_in_time IS NOT NULL)
	AND check_out_instant IS NULL AND check_out_time IS NULL`

// Insert appends a new check-in row and returns its id.
func (r *Repository) Insert(ctx context.Context, q store.Querier, rec *Record) (int64, error) {
	if err := validateInsert(rec); err != nil {
		return 0, err
	}

	flags := rec.Status.Flags()
	var instant any
	if rec.CheckInInstant != nil {
		instant = rec.CheckInInstant.Unix()
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO attendance
			(user_id, calendar_date, year, month, day, check_in_time, check_in_instant,
			 status, is_present, is_absent, is_sick, is_permission, is_late, notes,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UserID, rec.CalendarDate, rec.Year, rec.Month, rec.Day,
		rec.CheckInTime, instant,
		string(rec.Status), boolToInt(flags.IsPresent), boolToInt(flags.IsAbsent),
		boolToInt(flags.IsSick), boolToInt(flags.IsPermission), boolToInt(flags.IsLate),
		rec.Notes, rec.CreatedAt.Unix(), rec.UpdatedAt.Unix(),
	)
	if err != nil {
		return 0, errors.StorageError(err, "failed to insert attendance record")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.StorageError(err, "failed to read inserted record id")
	}
	return id, nil
}

func validateInsert(rec *Record) error {
	switch {
	case rec == nil:
		return errors.ConstraintError("attendance record is nil")
	case rec.UserID <= 0:
		return errors.ConstraintError("attendance record requires a user id")
	case rec.CalendarDate == "":
		return errors.ConstraintError("attendance record requires a calendar date")
	case rec.CheckInTime == "":
		return errors.ConstraintError("attendance record requires a check-in time")
	case rec.CheckInInstant == nil || rec.CheckInInstant.IsZero():
		return errors.ConstraintError("attendance record requires a check-in instant")
	case !rec.Status.Valid():
		return errors.ConstraintError("attendance record has unknown status")
	}
	return nil
}

// CloseOpen writes the check-out fields on exactly the open record identified
// by id. The open guard lives in the WHERE clause: if the id no longer
// denotes an open record (already closed, deleted) no row matches and a
// NotFound error is surfaced rather than silently succeeding.
func (r *Repository) CloseOpen(ctx context.Context, q store.Querier, id int64, checkOut time.Time, workingHours float64) error {
	res, err := q.ExecContext(ctx, `
		UPDATE attendance
		SET check_out_time = ?, check_out_instant = ?, working_hours = ?, updated_at = ?
		WHERE id = ? AND check_out_instant IS NULL AND check_out_time IS NULL`,
		checkOut.Format(TimeLayout), checkOut.Unix(), workingHours, checkOut.Unix(), id,
	)
	if err != nil {
		return errors.StorageError(err, "failed to close attendance record")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.StorageError(err, "failed to read close result")
	}
	if affected == 0 {
		return errors.NotFoundError("attendance record is not open").
			WithContext("record_id", id)
	}
	return nil
}

// FindOpenForUser returns the user's most recent open record regardless of
// calendar date, or nil when the user is checked out.
func (r *Repository) FindOpenForUser(ctx context.Context, q store.Querier, userID int64) (*Record, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM attendance
		WHERE user_id = ? AND `+openPredicate+`
		ORDER BY calendar_date DESC, check_in_time DESC LIMIT 1`,
		userID,
	)
	return scanOptional(row)
}

// FindTodayForUser returns all of the user's records for the given calendar
// date, newest check-in first.
func (r *Repository) FindTodayForUser(ctx context.Context, q store.Querier, userID int64, date string) ([]Record, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM attendance
		WHERE user_id = ? AND calendar_date = ?
		ORDER BY check_in_time DESC`,
		userID, date,
	)
	if err != nil {
		return nil, errors.StorageError(err, "failed to query today's attendance")
	}
	defer rows.Close()
	return scanRecords(rows)
}

// FindLatestForUser returns the user's most recent record for the given
// calendar date only, or nil.
func (r *Repository) FindLatestForUser(ctx context.Context, q store.Querier, userID int64, date string) (*Record, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM attendance
		WHERE user_id = ? AND calendar_date = ?
		ORDER BY check_in_time DESC LIMIT 1`,
		userID, date,
	)
	return scanOptional(row)
}

// FindHistory returns a page of the user's records, newest date first.
func (r *Repository) FindHistory(ctx context.Context, q store.Querier, userID int64, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := q.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM attendance
		WHERE user_id = ?
		ORDER BY calendar_date DESC, check_in_time DESC
		LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, errors.StorageError(err, "failed to query attendance history")
	}
	defer rows.Close()
	return scanRecords(rows)
}

// FindLastCheckIn returns the user's most recent check-in from any date, or nil.
func (r *Repository) FindLastCheckIn(ctx context.Context, q store.Querier, userID int64) (*Record, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM attendance
		WHERE user_id = ? AND check_in_time IS NOT NULL
		ORDER BY calendar_date DESC, check_in_time DESC LIMIT 1`,
		userID,
	)
	return scanOptional(row)
}

// FindLastCheckOut returns the user's most recent check-out from any date, or nil.
func (r *Repository) FindLastCheckOut(ctx context.Context, q store.Querier, userID int64) (*Record, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM attendance
		WHERE user_id = ? AND check_out_time IS NOT NULL
		ORDER BY calendar_date DESC, check_out_time DESC LIMIT 1`,
		userID,
	)
	return scanOptional(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (*Record, error) {
	var (
		rec           Record
		checkInTime   sql.NullString
		checkInInst   sql.NullInt64
		checkOutTime  sql.NullString
		checkOutInst  sql.NullInt64
		workingHours  sql.NullFloat64
		status        string
		present, absent, sick, permission, late int
		notes         sql.NullString
		created, updated int64
	)

	err := s.Scan(
		&rec.ID, &rec.UserID, &rec.CalendarDate, &rec.Year, &rec.Month, &rec.Day,
		&checkInTime, &checkInInst, &checkOutTime, &checkOutInst,
		&workingHours, &status, &present, &absent, &sick, &permission, &late,
		&notes, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	rec.CheckInTime = checkInTime.String
	if checkInInst.Valid {
		t := time.Unix(checkInInst.Int64, 0)
		rec.CheckInInstant = &t
	}
	rec.CheckOutTime = checkOutTime.String
	if checkOutInst.Valid {
		t := time.Unix(checkOutInst.Int64, 0)
		rec.CheckOutInstant = &t
	}
	if workingHours.Valid {
		h := workingHours.Float64
		rec.WorkingHours = &h
	}
	rec.Status = Status(status)
	rec.Flags = StatusFlags{
		IsPresent:    present != 0,
		IsAbsent:     absent != 0,
		IsSick:       sick != 0,
		IsPermission: permission != 0,
		IsLate:       late != 0,
	}
	rec.Notes = notes.String
	rec.CreatedAt = time.Unix(created, 0)
	rec.UpdatedAt = time.Unix(updated, 0)
	return &rec, nil
}

func scanOptional(row *sql.Row) (*Record, error) {
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.StorageError(err, "failed to scan attendance record")
	}
	return rec, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.StorageError(err, "failed to scan attendance record")
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageError(err, "failed to iterate attendance rows")
	}
	return records, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
