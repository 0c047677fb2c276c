package attendance

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/timeclock/internal/errors"
	"git.home.luguber.info/inful/timeclock/internal/logfields"
	"git.home.luguber.info/inful/timeclock/internal/metrics"
	"git.home.luguber.info/inful/timeclock/internal/notify"
	"git.home.luguber.info/inful/timeclock/internal/store"
)

// Operation names for metrics and log fields.
const (
	opCheckIn  = "check_in"
	opCheckOut = "check_out"
)

// Tracker is the attendance state machine. A user's state is inferred from
// data, never stored: CheckedOut (no open record) or CheckedIn (exactly one
// open record). Check-in and check-out each run their read-then-write pair
// inside one IMMEDIATE transaction, so two concurrent attempts for the same
// user cannot both pass the open-record check before either commits.
type Tracker struct {
	mgr    *store.Manager
	repo   *Repository
	pins   PinVerifier
	rec    metrics.Recorder
	events notify.Publisher
	now    func() time.Time
}

// TrackerOption customizes a Tracker.
type TrackerOption func(*Tracker)

// WithClock injects the time source (tests).
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithMetrics injects a metrics recorder.
func WithMetrics(rec metrics.Recorder) TrackerOption {
	return func(t *Tracker) {
		if rec != nil {
			t.rec = rec
		}
	}
}

// WithPublisher injects an attendance event publisher.
func WithPublisher(p notify.Publisher) TrackerOption {
	return func(t *Tracker) {
		if p != nil {
			t.events = p
		}
	}
}

// NewTracker creates the attendance state machine.
func NewTracker(mgr *store.Manager, pins PinVerifier, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		mgr:    mgr,
		repo:   NewRepository(),
		pins:   pins,
		rec:    metrics.NoopRecorder{},
		events: notify.NoopPublisher{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CheckIn transitions the user from CheckedOut to CheckedIn and returns the
// new record id. Rejected transitions (bad PIN, already checked in) leave the
// store untouched.
func (t *Tracker) CheckIn(ctx context.Context, sess Session, pin string) (int64, error) {
	opID := uuid.NewString()
	started := t.now()
	defer func() { t.rec.ObserveOpDuration(opCheckIn, t.now().Sub(started)) }()

	if !sess.Valid() {
		t.rec.IncOpResult(opCheckIn, metrics.ResultRejected)
		return 0, errors.NotAuthenticatedError()
	}
	if !t.pins.Verify(ctx, sess.UserID, pin) {
		slog.Warn("Check-in rejected: PIN mismatch",
			logfields.Op(opCheckIn), logfields.OpID(opID), logfields.UserID(sess.UserID))
		t.rec.IncOpResult(opCheckIn, metrics.ResultRejected)
		return 0, errors.InvalidPinError()
	}

	var id int64
	var at time.Time
	err := t.mgr.WithImmediateTx(ctx, func(tx *sql.Tx) error {
		open, err := t.repo.FindOpenForUser(ctx, tx, sess.UserID)
		if err != nil {
			return err
		}
		if open != nil {
			return errors.AlreadyCheckedInError(open.ID)
		}
		at = t.now()
		id, err = t.repo.Insert(ctx, tx, NewCheckInRecord(sess.UserID, at))
		return err
	})
	if err != nil {
		t.recordFailure(opCheckIn, err)
		return 0, err
	}

	t.rec.IncOpResult(opCheckIn, metrics.ResultSuccess)
	slog.Info("User checked in",
		logfields.Op(opCheckIn), logfields.OpID(opID),
		logfields.UserID(sess.UserID), logfields.RecordID(id))
	t.publish(ctx, notify.Event{
		Kind: notify.EventCheckIn, OpID: opID,
		UserID: sess.UserID, RecordID: id, At: at,
	})
	return id, nil
}

// CheckOutResult reports a completed check-out.
type CheckOutResult struct {
	RecordID     int64
	WorkingHours float64
	CheckedOutAt time.Time
}

// CheckOut transitions the user from CheckedIn to CheckedOut, computing and
// persisting the elapsed working hours on the open record.
func (t *Tracker) CheckOut(ctx context.Context, sess Session) (*CheckOutResult, error) {
	opID := uuid.NewString()
	started := t.now()
	defer func() { t.rec.ObserveOpDuration(opCheckOut, t.now().Sub(started)) }()

	if !sess.Valid() {
		t.rec.IncOpResult(opCheckOut, metrics.ResultRejected)
		return nil, errors.NotAuthenticatedError()
	}

	var result *CheckOutResult
	err := t.mgr.WithImmediateTx(ctx, func(tx *sql.Tx) error {
		open, err := t.repo.FindOpenForUser(ctx, tx, sess.UserID)
		if err != nil {
			return err
		}
		if open == nil {
			return errors.NoOpenRecordError()
		}

		now := t.now()
		hours, err := WorkingHours(open, now)
		if err != nil {
			return err
		}
		if err := t.repo.CloseOpen(ctx, tx, open.ID, now, hours); err != nil {
			return err
		}
		result = &CheckOutResult{RecordID: open.ID, WorkingHours: hours, CheckedOutAt: now}
		return nil
	})
	if err != nil {
		t.recordFailure(opCheckOut, err)
		return nil, err
	}

	t.rec.IncOpResult(opCheckOut, metrics.ResultSuccess)
	t.rec.ObserveWorkingHours(result.WorkingHours)
	slog.Info("User checked out",
		logfields.Op(opCheckOut), logfields.OpID(opID),
		logfields.UserID(sess.UserID), logfields.RecordID(result.RecordID),
		logfields.Hours(result.WorkingHours))
	t.publish(ctx, notify.Event{
		Kind: notify.EventCheckOut, OpID: opID,
		UserID: sess.UserID, RecordID: result.RecordID,
		At: result.CheckedOutAt, WorkingHours: &result.WorkingHours,
	})
	return result, nil
}

// GetUnclosedRecord exposes the CheckedIn state to callers (UI indicators).
// Read-only; returns nil when the user is checked out.
func (t *Tracker) GetUnclosedRecord(ctx context.Context, sess Session) (*Record, error) {
	if !sess.Valid() {
		return nil, errors.NotAuthenticatedError()
	}
	var rec *Record
	err := t.mgr.With(ctx, func(db *sql.DB) error {
		var err error
		rec, err = t.repo.FindOpenForUser(ctx, db, sess.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Today returns all of the user's records for the current calendar date,
// newest check-in first.
func (t *Tracker) Today(ctx context.Context, sess Session) ([]Record, error) {
	if !sess.Valid() {
		return nil, errors.NotAuthenticatedError()
	}
	var records []Record
	err := t.mgr.With(ctx, func(db *sql.DB) error {
		var err error
		records, err = t.repo.FindTodayForUser(ctx, db, sess.UserID, t.now().Format(DateLayout))
		return err
	})
	return records, err
}

// Latest returns the user's most recent record for today only, or nil.
func (t *Tracker) Latest(ctx context.Context, sess Session) (*Record, error) {
	if !sess.Valid() {
		return nil, errors.NotAuthenticatedError()
	}
	var rec *Record
	err := t.mgr.With(ctx, func(db *sql.DB) error {
		var err error
		rec, err = t.repo.FindLatestForUser(ctx, db, sess.UserID, t.now().Format(DateLayout))
		return err
	})
	return rec, err
}

// History returns a page of the user's attendance, newest date first.
func (t *Tracker) History(ctx context.Context, sess Session, limit, offset int) ([]Record, error) {
	if !sess.Valid() {
		return nil, errors.NotAuthenticatedError()
	}
	var records []Record
	err := t.mgr.With(ctx, func(db *sql.DB) error {
		var err error
		records, err = t.repo.FindHistory(ctx, db, sess.UserID, limit, offset)
		return err
	})
	return records, err
}

// LastCheckIn returns the user's most recent check-in from any date, or nil.
func (t *Tracker) LastCheckIn(ctx context.Context, sess Session) (*Record, error) {
	if !sess.Valid() {
		return nil, errors.NotAuthenticatedError()
	}
	var rec *Record
	err := t.mgr.With(ctx, func(db *sql.DB) error {
		var err error
		rec, err = t.repo.FindLastCheckIn(ctx, db, sess.UserID)
		return err
	})
	return rec, err
}

// LastCheckOut returns the user's most recent check-out from any date, or nil.
func (t *Tracker) LastCheckOut(ctx context.Context, sess Session) (*Record, error) {
	if !sess.Valid() {
		return nil, errors.NotAuthenticatedError()
	}
	var rec *Record
	err := t.mgr.With(ctx, func(db *sql.DB) error {
		var err error
		rec, err = t.repo.FindLastCheckOut(ctx, db, sess.UserID)
		return err
	})
	return rec, err
}

func (t *Tracker) recordFailure(op string, err error) {
	switch errors.GetCategory(err) {
	case errors.CategoryAlreadyCheckedIn, errors.CategoryNoOpenRecord, errors.CategoryAuth, errors.CategoryPin:
		t.rec.IncOpResult(op, metrics.ResultRejected)
	default:
		t.rec.IncOpResult(op, metrics.ResultError)
	}
}

// publish delivers an event best-effort; a failed publish never fails the
// committed attendance operation.
func (t *Tracker) publish(ctx context.Context, ev notify.Event) {
	if err := t.events.Publish(ctx, ev); err != nil {
		slog.Warn("Failed to publish attendance event",
			logfields.Op(string(ev.Kind)), logfields.OpID(ev.OpID), logfields.Error(err))
	}
}
