// Package metrics provides observability hooks for attendance operations.
// Components receive a Recorder through dependency injection; the default
// NoopRecorder makes metrics collection optional with no nil checks at call
// sites.
package metrics

import "time"

// ResultLabel enumerates operation result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultRejected ResultLabel = "rejected" // state machine refused the transition
	ResultError    ResultLabel = "error"
)

// Recorder defines observability hooks for attendance and store operations.
// Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveOpDuration(op string, d time.Duration)
	IncOpResult(op string, result ResultLabel)
	ObserveWorkingHours(h float64)
	IncConnectionRetry()
	IncConnectionExhausted()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveOpDuration(string, time.Duration) {}
func (NoopRecorder) IncOpResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveWorkingHours(float64)             {}
func (NoopRecorder) IncConnectionRetry()                     {}
func (NoopRecorder) IncConnectionExhausted()                 {}
