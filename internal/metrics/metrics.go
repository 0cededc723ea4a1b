// Package metrics provides Prometheus metrics for the tripmate API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	TurnsTotal       *prometheus.CounterVec
	ReasoningRounds  prometheus.Histogram
	ToolCallsTotal   *prometheus.CounterVec
	ToolCallDuration *prometheus.HistogramVec
	GeocodeTotal     *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers all collectors against reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{gatherer: reg}

	m.TurnsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripmate_turns_total",
			Help: "Total number of conversation turns by outcome",
		},
		[]string{"status"},
	)
	m.ReasoningRounds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tripmate_reasoning_rounds",
			Help:    "Reasoning steps executed per turn",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)
	m.ToolCallsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripmate_tool_calls_total",
			Help: "Total number of tool invocations",
		},
		[]string{"tool", "status"},
	)
	m.ToolCallDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripmate_tool_call_duration_seconds",
			Help:    "Duration of tool invocations in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"tool"},
	)
	m.GeocodeTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripmate_geocode_lookups_total",
			Help: "Geocoding lookups by outcome (resolved, cached, unresolved)",
		},
		[]string{"status"},
	)
	m.HTTPRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripmate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)
	m.HTTPDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripmate_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordTurn records a finished turn and how many reasoning steps it took.
func (m *Metrics) RecordTurn(status string, rounds int) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(status).Inc()
	m.ReasoningRounds.Observe(float64(rounds))
}

// RecordToolCall records one tool invocation.
func (m *Metrics) RecordToolCall(tool, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ToolCallsTotal.WithLabelValues(tool, status).Inc()
	m.ToolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordGeocode records a geocoding outcome.
func (m *Metrics) RecordGeocode(status string) {
	if m == nil {
		return
	}
	m.GeocodeTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records a served request.
func (m *Metrics) RecordHTTPRequest(route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, status).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(duration.Seconds())
}
