package attendance

import (
	"time"

	"git.home.luguber.info/inful/timeclock/internal/errors"
)

// WorkingHours computes the elapsed working duration for an open record being
// checked out at now, in decimal hours. The result is never negative.
//
// Records created by this subsystem carry a full check-in instant, and the
// duration is a plain subtraction that stays correct across any number of
// elapsed days. Legacy rows imported from older data carry only date and
// wall-clock parts and take the reconstruction path.
func WorkingHours(rec *Record, now time.Time) (float64, error) {
	if rec == nil {
		return 0, errors.ConstraintError("attendance record is nil")
	}
	if rec.CheckInInstant != nil && !rec.CheckInInstant.IsZero() {
		h := now.Sub(*rec.CheckInInstant).Hours()
		if h < 0 {
			// Clock skew; a closed record must still satisfy working_hours >= 0.
			h = 0
		}
		return h, nil
	}
	return legacyWorkingHours(rec, now)
}

// legacyWorkingHours reconstructs instants from the denormalized parts. The
// check-in is rebuilt from the record's own calendar date plus its wall-clock
// time, so a checkout days later yields the full elapsed duration rather
// than a same-day remainder. If the reconstructed check-out still precedes
// the check-in (a row whose stored date drifted across the midnight
// boundary), one day is added before subtracting.
func legacyWorkingHours(rec *Record, now time.Time) (float64, error) {
	if rec.CalendarDate == "" || rec.CheckInTime == "" {
		return 0, errors.ConstraintError("attendance record has no check-in information")
	}

	in, err := time.ParseInLocation(DateLayout+" "+TimeLayout, rec.CalendarDate+" "+rec.CheckInTime, now.Location())
	if err != nil {
		return 0, errors.ConstraintError("attendance record has malformed check-in fields").
			WithContext("calendar_date", rec.CalendarDate).
			WithContext("check_in_time", rec.CheckInTime)
	}

	out := now
	if out.Before(in) {
		out = out.AddDate(0, 0, 1)
	}
	h := out.Sub(in).Hours()
	if h < 0 {
		h = 0
	}
	return h, nil
}
