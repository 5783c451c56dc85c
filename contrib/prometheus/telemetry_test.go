package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kafeido/kafeido-go/core"
)

func TestTelemetryHookRecordsRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	hook := NewTelemetryHookWithRegistry(registry)

	start := time.Now()
	hook.OnRequestStart(core.RequestStartEvent{
		CallID: "call-1",
		Method: "POST",
		Path:   "/v1/chat/completions",
		Start:  start,
	})
	hook.OnRequestEnd(core.RequestEndEvent{
		CallID:   "call-1",
		Method:   "POST",
		Path:     "/v1/chat/completions",
		Status:   200,
		Attempts: 3,
		Start:    start,
		End:      start.Add(120 * time.Millisecond),
	})

	if got := testutil.ToFloat64(hook.requestsTotal.WithLabelValues("POST", "/v1/chat/completions", "200")); got != 1 {
		t.Errorf("requests_total = %v, want 1", got)
	}
	// Two retries out of three attempts.
	if got := testutil.ToFloat64(hook.retriesTotal.WithLabelValues("POST", "/v1/chat/completions")); got != 2 {
		t.Errorf("retries_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(hook.requestsInFlight.WithLabelValues("POST", "/v1/chat/completions")); got != 0 {
		t.Errorf("requests_in_flight = %v, want 0", got)
	}
}

func TestTelemetryHookRecordsErrorKind(t *testing.T) {
	registry := prometheus.NewRegistry()
	hook := NewTelemetryHookWithRegistry(registry)

	start := time.Now()
	hook.OnRequestStart(core.RequestStartEvent{CallID: "call-2", Method: "GET", Path: "/v1/models", Start: start})
	hook.OnRequestEnd(core.RequestEndEvent{
		CallID:   "call-2",
		Method:   "GET",
		Path:     "/v1/models",
		Status:   429,
		Attempts: 1,
		Start:    start,
		End:      start.Add(10 * time.Millisecond),
		Err:      &core.Error{Kind: core.KindRateLimit, Status: 429},
	})

	if got := testutil.ToFloat64(hook.errorsTotal.WithLabelValues("GET", "/v1/models", "rate_limit")); got != 1 {
		t.Errorf("errors_total{kind=rate_limit} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(hook.requestsTotal.WithLabelValues("GET", "/v1/models", "429")); got != 1 {
		t.Errorf("requests_total{status=429} = %v, want 1", got)
	}
}
