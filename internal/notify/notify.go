// Package notify publishes attendance transition events for the wider suite
// (dashboards, admin views). Publishing is best-effort and optional; the
// NoopPublisher is the default.
package notify

import (
	"context"
	"time"
)

// EventKind enumerates attendance transitions.
type EventKind string

const (
	EventCheckIn  EventKind = "check_in"
	EventCheckOut EventKind = "check_out"
)

// Event describes one committed attendance transition.
type Event struct {
	Kind         EventKind `json:"kind"`
	OpID         string    `json:"op_id"`
	UserID       int64     `json:"user_id"`
	RecordID     int64     `json:"record_id"`
	At           time.Time `json:"at"`
	WorkingHours *float64  `json:"working_hours,omitempty"`
}

// Publisher delivers attendance events to an external channel.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close()
}

// NoopPublisher is a Publisher that does nothing (default when events are not configured).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close()                               {}
