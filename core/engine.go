package core

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Backend executes requests against the API. It holds no mutable per-call
// state and is safe for concurrent use; every call owns its own attempt
// sequence and connection.
type Backend struct {
	cfg       Config
	retry     RetryPolicy
	telemetry TelemetryHook
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithRetryPolicy replaces the default exponential backoff policy.
func WithRetryPolicy(p RetryPolicy) BackendOption {
	return func(b *Backend) {
		if p != nil {
			b.retry = p
		}
	}
}

// WithTelemetry sets the telemetry hook.
func WithTelemetry(h TelemetryHook) BackendOption {
	return func(b *Backend) {
		if h != nil {
			b.telemetry = h
		}
	}
}

// NewBackend creates a Backend from cfg, filling unset fields with
// defaults. The config is copied; later mutation of cfg has no effect.
func NewBackend(cfg Config, opts ...BackendOption) *Backend {
	b := &Backend{
		cfg:       cfg.withDefaults(),
		telemetry: NoopTelemetryHook{},
	}
	b.retry = DefaultRetryPolicy(b.cfg.MaxRetries)
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Config returns a copy of the effective configuration.
func (b *Backend) Config() Config {
	return b.cfg
}

// Do executes a non-streaming request and decodes the response body into
// T. T = []byte receives the raw body unparsed, for endpoints that return
// binary or plain-text payloads.
//
// Transient failures (connection errors, timeouts, HTTP 429 and 5xx) are
// retried with backoff up to the configured limit; on exhaustion the
// error of the final attempt is returned, never a generic placeholder.
// Decode failures of a successful response are surfaced immediately and
// never retried.
func Do[T any](ctx context.Context, b *Backend, req *Request) (T, error) {
	var out T

	raw, err := b.roundTrip(ctx, req)
	if err != nil {
		return out, err
	}

	if target, ok := any(&out).(*[]byte); ok {
		*target = raw.Body
		return out, nil
	}

	if err := json.Unmarshal(raw.Body, &out); err != nil {
		var zero T
		return zero, &Error{
			Kind:    KindDecode,
			Status:  raw.Status,
			Message: "decoding response: " + err.Error(),
			Body:    raw.Body,
			Err:     err,
		}
	}
	return out, nil
}

// DoStream executes a streaming request and returns a lazy sequence of
// decoded chunks. Retries apply only until the response is obtained;
// once the stream is handed to the caller a mid-stream failure terminates
// the sequence and is never retried, since a restart would duplicate
// partial output.
//
// The returned stream must be fully drained or closed to release the
// connection.
func DoStream[T any](ctx context.Context, b *Backend, req *Request) (*Stream[T], error) {
	raw, err := b.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}

	idle := req.IdleTimeout
	if idle <= 0 {
		idle = b.cfg.IdleTimeout
	}
	return newStream[T](ctx, raw.Stream, idle), nil
}

// roundTrip drives the retry loop: encode once, then attempt, classify,
// consult the retry policy, wait, and repeat. The backoff wait is the
// only place a call blocks outside network I/O, and it honors
// cancellation.
func (b *Backend) roundTrip(ctx context.Context, req *Request) (*rawResponse, error) {
	callID := uuid.NewString()
	start := time.Now()
	b.telemetry.OnRequestStart(RequestStartEvent{
		CallID: callID,
		Method: req.Method,
		Path:   req.Path,
		Start:  start,
	})

	finish := func(attempts, status int, err error) {
		b.telemetry.OnRequestEnd(RequestEndEvent{
			CallID:   callID,
			Method:   req.Method,
			Path:     req.Path,
			Status:   status,
			Attempts: attempts,
			Start:    start,
			End:      time.Now(),
			Err:      err,
		})
	}

	body, encErr := encodeBody(req)
	if encErr != nil {
		finish(0, 0, encErr)
		return nil, encErr
	}

	for attempt := 0; ; attempt++ {
		raw, sendErr := b.send(ctx, req, body)
		if sendErr == nil {
			finish(attempt+1, raw.Status, nil)
			return raw, nil
		}

		delay, retry := b.retry.NextDelay(attempt, sendErr)
		if !retry {
			finish(attempt+1, sendErr.Status, sendErr)
			return nil, sendErr
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			cancelErr := classifyTransport(ctx, ctx.Err())
			finish(attempt+1, sendErr.Status, cancelErr)
			return nil, cancelErr
		case <-timer.C:
		}
	}
}
