package core

import "time"

// TelemetryHook receives notifications about request lifecycle events.
// Implementations can use this for logging, metrics, or tracing.
//
// Event types never include sensitive data: no API keys, no request
// bodies, no response content. Only operational metadata is exposed, so
// telemetry can be logged or exported without credential review.
type TelemetryHook interface {
	// OnRequestStart is called once per logical call, before the first
	// attempt.
	OnRequestStart(e RequestStartEvent)

	// OnRequestEnd is called once per logical call, after the final
	// attempt, whether it succeeded or failed.
	OnRequestEnd(e RequestEndEvent)
}

// RequestStartEvent describes a starting call.
type RequestStartEvent struct {
	CallID string    // engine-generated ID correlating start/end events
	Method string    // HTTP method
	Path   string    // endpoint path
	Start  time.Time // when the call started
}

// RequestEndEvent describes a completed call.
type RequestEndEvent struct {
	CallID   string
	Method   string
	Path     string
	Status   int       // final HTTP status, 0 if no response was received
	Attempts int       // transport attempts made, including the first
	Start    time.Time
	End      time.Time
	Err      error // nil on success
}

// Duration returns the elapsed time for the call, backoff waits included.
func (e RequestEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NoopTelemetryHook is the default TelemetryHook; it does nothing.
type NoopTelemetryHook struct{}

// OnRequestStart does nothing.
func (NoopTelemetryHook) OnRequestStart(RequestStartEvent) {}

// OnRequestEnd does nothing.
func (NoopTelemetryHook) OnRequestEnd(RequestEndEvent) {}

var _ TelemetryHook = NoopTelemetryHook{}
