package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/timeclock/internal/errors"
)

func TestWorkingHoursFromInstant(t *testing.T) {
	in := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rec := &Record{CheckInInstant: ptrTime(in)}

	h, err := WorkingHours(rec, in.Add(7*time.Hour+30*time.Minute))
	require.NoError(t, err)
	assert.InDelta(t, 7.5, h, 1e-9)
}

func TestWorkingHoursInstantCrossesMidnight(t *testing.T) {
	in := time.Date(2026, 3, 10, 23, 50, 0, 0, time.UTC)
	rec := &Record{CheckInInstant: ptrTime(in)}

	h, err := WorkingHours(rec, time.Date(2026, 3, 11, 0, 10, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, h, 1e-9)
}

func TestWorkingHoursInstantSpansMultipleDays(t *testing.T) {
	in := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	rec := &Record{CheckInInstant: ptrTime(in)}

	h, err := WorkingHours(rec, time.Date(2026, 3, 13, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 56.0, h, 1e-9)
}

func TestWorkingHoursClampsClockSkew(t *testing.T) {
	in := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rec := &Record{CheckInInstant: ptrTime(in)}

	h, err := WorkingHours(rec, in.Add(-time.Minute))
	require.NoError(t, err)
	assert.Zero(t, h)
}

func TestWorkingHoursLegacyReconstruction(t *testing.T) {
	rec := &Record{CalendarDate: "2026-03-10", CheckInTime: "09:00:00"}

	h, err := WorkingHours(rec, time.Date(2026, 3, 10, 17, 15, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 8.25, h, 1e-9)
}

func TestWorkingHoursLegacyCrossesMidnight(t *testing.T) {
	rec := &Record{CalendarDate: "2026-03-10", CheckInTime: "23:50:00"}

	h, err := WorkingHours(rec, time.Date(2026, 3, 11, 0, 10, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, h, 1e-9)
}

func TestWorkingHoursLegacySpansMultipleDays(t *testing.T) {
	// The check-in is rebuilt from the record's own date, so a checkout two
	// days later yields the full elapsed duration.
	rec := &Record{CalendarDate: "2026-03-10", CheckInTime: "08:00:00"}

	h, err := WorkingHours(rec, time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 48.0, h, 1e-9)
}

func TestWorkingHoursLegacyUsesCheckoutLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	rec := &Record{CalendarDate: "2026-03-10", CheckInTime: "09:00:00"}

	h, err := WorkingHours(rec, time.Date(2026, 3, 10, 17, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.InDelta(t, 8.0, h, 1e-9)
}

func TestWorkingHoursRejectsIncompleteRecords(t *testing.T) {
	tests := []struct {
		name string
		rec  *Record
	}{
		{"nil record", nil},
		{"no check-in data", &Record{CalendarDate: "2026-03-10"}},
		{"no date", &Record{CheckInTime: "09:00:00"}},
		{"malformed time", &Record{CalendarDate: "2026-03-10", CheckInTime: "9 o'clock"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WorkingHours(tt.rec, time.Now())
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryConstraint))
		})
	}
}
