// File: internal/observability/metrics.go
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the service.
type Metrics struct {
	Registry           *prometheus.Registry
	ActiveSessions     prometheus.Gauge
	SessionsTotal      prometheus.Counter
	ActionsTotal       *prometheus.CounterVec
	ToolCallsTotal     *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram
	LLMRequestsTotal   *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	activeSessions := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pagehound_active_sessions",
			Help: "Number of browser sessions currently open.",
		},
	)
	sessionsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pagehound_sessions_created_total",
			Help: "Total number of browser sessions created.",
		},
	)
	actions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagehound_actions_total",
			Help: "Total browser actions executed, by action type and outcome.",
		},
		[]string{"action", "outcome"},
	)
	toolCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagehound_tool_calls_total",
			Help: "Total tool invocations, by tool name.",
		},
		[]string{"tool"},
	)
	extractionDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pagehound_extraction_duration_seconds",
			Help:    "End-to-end latency of product extraction runs.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
	llmRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagehound_llm_requests_total",
			Help: "Total LLM API requests, by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagehound_errors_total",
			Help: "Total errors by category.",
		},
		[]string{"category"},
	)

	registry.MustRegister(activeSessions, sessionsTotal, actions, toolCalls,
		extractionDuration, llmRequests, errorsTotal)

	return &Metrics{
		Registry:           registry,
		ActiveSessions:     activeSessions,
		SessionsTotal:      sessionsTotal,
		ActionsTotal:       actions,
		ToolCallsTotal:     toolCalls,
		ExtractionDuration: extractionDuration,
		LLMRequestsTotal:   llmRequests,
		ErrorsTotal:        errorsTotal,
	}
}

// SessionOpened records a new session and bumps the active gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsTotal.Inc()
	m.ActiveSessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

// IncAction records one executed browser action.
func (m *Metrics) IncAction(action string, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.ActionsTotal.WithLabelValues(action, outcome).Inc()
}

// IncToolCall records one tool invocation.
func (m *Metrics) IncToolCall(tool string) {
	if m == nil {
		return
	}
	m.ToolCallsTotal.WithLabelValues(tool).Inc()
}

// ObserveExtraction records the duration of a product extraction run.
func (m *Metrics) ObserveExtraction(d time.Duration) {
	if m == nil {
		return
	}
	m.ExtractionDuration.Observe(d.Seconds())
}

// IncLLMRequest records one LLM API call.
func (m *Metrics) IncLLMRequest(provider string, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.LLMRequestsTotal.WithLabelValues(provider, outcome).Inc()
}

// IncError increments the errors counter for a category label.
func (m *Metrics) IncError(category string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(category).Inc()
}
