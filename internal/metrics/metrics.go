// Package metrics provides Prometheus instrumentation for the session
// gateway: auth outcome counters and HTTP request latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the auth counters.
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid"
	OutcomeConflict     = "conflict"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"
)

var (
	// RegistrationsTotal counts POST /api/register calls by outcome.
	RegistrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_gateway_registrations_total",
		Help: "Registration attempts by outcome",
	}, []string{"outcome"})

	// LoginsTotal counts POST /api/login calls by outcome.
	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_gateway_logins_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})

	// EventPublishFailures counts auth events that no sink accepted.
	EventPublishFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "session_gateway_event_publish_failures_total",
		Help: "Auth events that failed to publish",
	})

	// RequestDuration records HTTP handling latency per route pattern.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "session_gateway_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		RegistrationsTotal,
		LoginsTotal,
		EventPublishFailures,
		RequestDuration,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
