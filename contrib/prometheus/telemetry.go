// Package prometheus exports client request metrics to Prometheus.
package prometheus

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kafeido/kafeido-go/core"
)

// TelemetryHook implements core.TelemetryHook, recording one
// observation per logical request. It is safe for concurrent use.
type TelemetryHook struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec
	retriesTotal     *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
}

// NewTelemetryHook creates a hook registered on the default registerer.
func NewTelemetryHook() *TelemetryHook {
	return NewTelemetryHookWithRegistry(prometheus.DefaultRegisterer)
}

// NewTelemetryHookWithRegistry creates a hook using the supplied registerer.
func NewTelemetryHookWithRegistry(registry prometheus.Registerer) *TelemetryHook {
	return &TelemetryHook{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kafeido_requests_total",
				Help: "Total number of API requests made",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kafeido_request_duration_seconds",
				Help:    "Duration of API requests in seconds, retries included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kafeido_requests_in_flight",
				Help: "Number of API requests currently in flight",
			},
			[]string{"method", "path"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kafeido_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"method", "path"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "kafeido_errors_total",
				Help: "Total number of failed API requests by error kind",
			},
			[]string{"method", "path", "kind"},
		),
	}
}

// OnRequestStart marks a request in flight.
func (h *TelemetryHook) OnRequestStart(ev core.RequestStartEvent) {
	h.requestsInFlight.WithLabelValues(ev.Method, ev.Path).Inc()
}

// OnRequestEnd records the outcome of a finished request.
func (h *TelemetryHook) OnRequestEnd(ev core.RequestEndEvent) {
	h.requestsInFlight.WithLabelValues(ev.Method, ev.Path).Dec()

	status := statusLabel(ev)
	h.requestsTotal.WithLabelValues(ev.Method, ev.Path, status).Inc()
	h.requestDuration.WithLabelValues(ev.Method, ev.Path, status).Observe(ev.Duration().Seconds())

	if ev.Attempts > 1 {
		h.retriesTotal.WithLabelValues(ev.Method, ev.Path).Add(float64(ev.Attempts - 1))
	}
	if ev.Err != nil {
		h.errorsTotal.WithLabelValues(ev.Method, ev.Path, errorKind(ev.Err)).Inc()
	}
}

func statusLabel(ev core.RequestEndEvent) string {
	if ev.Status != 0 {
		return strconv.Itoa(ev.Status)
	}
	if ev.Err != nil {
		return "error"
	}
	return "unknown"
}

func errorKind(err error) string {
	var apiErr *core.Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind.String()
	}
	return "unknown"
}

var _ core.TelemetryHook = (*TelemetryHook)(nil)
