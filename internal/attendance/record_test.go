package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPresent, StatusAbsent, StatusSick, StatusPermission, StatusLate, StatusNoInformation} {
		assert.True(t, s.Valid(), "status %q", s)
	}
	assert.False(t, Status("Vacation").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatusFlags(t *testing.T) {
	assert.Equal(t, StatusFlags{IsPresent: true}, StatusPresent.Flags())
	assert.Equal(t, StatusFlags{IsSick: true}, StatusSick.Flags())
	assert.Equal(t, StatusFlags{}, StatusNoInformation.Flags())
}

func TestNewCheckInRecord(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 15, 30, 0, time.UTC)
	rec := NewCheckInRecord(42, now)

	assert.Equal(t, int64(42), rec.UserID)
	assert.Equal(t, "2026-03-10", rec.CalendarDate)
	assert.Equal(t, 2026, rec.Year)
	assert.Equal(t, 3, rec.Month)
	assert.Equal(t, 10, rec.Day)
	assert.Equal(t, "09:15:30", rec.CheckInTime)
	require.NotNil(t, rec.CheckInInstant)
	assert.True(t, rec.CheckInInstant.Equal(now))
	assert.Equal(t, StatusPresent, rec.Status)
	assert.True(t, rec.Flags.IsPresent)
	assert.True(t, rec.Open())
}

func TestRecordOpen(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"fresh check-in", Record{CheckInInstant: ptrTime(now)}, true},
		{"legacy open row", Record{CheckInTime: "09:00:00"}, true},
		{"closed by instant", Record{CheckInInstant: ptrTime(now), CheckOutInstant: ptrTime(now)}, false},
		{"legacy closed row", Record{CheckInTime: "09:00:00", CheckOutTime: "17:00:00"}, false},
		{"never checked in", Record{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Open())
		})
	}
}

func TestSessionValid(t *testing.T) {
	assert.True(t, Session{UserID: 1, Authenticated: true}.Valid())
	assert.False(t, Session{UserID: 1}.Valid())
	assert.False(t, Session{Authenticated: true}.Valid())
	assert.False(t, Session{UserID: -3, Authenticated: true}.Valid())
}
