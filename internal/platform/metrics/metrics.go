// Package metrics exposes library service counters to Prometheus.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"library/internal/library"
)

var _ library.Recorder = (*Metrics)(nil)

// Metrics implements library.Recorder.
type Metrics struct {
	Operations           *prometheus.CounterVec
	NotificationAttempts prometheus.Counter
	NotificationFailures *prometheus.CounterVec
	ReviewFetchErrors    prometheus.Counter
}

// New registers all library metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "library_operations_total",
			Help: "Total library operations by operation and result",
		}, []string{"op", "result"}),

		NotificationAttempts: f.NewCounter(prometheus.CounterOpts{
			Name: "library_notification_attempts_total",
			Help: "Total notification delivery attempts",
		}),

		NotificationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "library_notification_failures_total",
			Help: "Notifications that exhausted their retries, by exhaustion mode",
		}, []string{"mode"}), // mode: "log", "raise"

		ReviewFetchErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "library_review_fetch_errors_total",
			Help: "Failed calls to the review service",
		}),
	}
}

func (m *Metrics) Operation(op string, err error) {
	if m != nil {
		m.Operations.WithLabelValues(op, Result(err)).Inc()
	}
}

func (m *Metrics) NotificationAttempt() {
	if m != nil {
		m.NotificationAttempts.Inc()
	}
}

func (m *Metrics) NotificationFailed(mode string) {
	if m != nil {
		m.NotificationFailures.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) ReviewFetchFailed() {
	if m != nil {
		m.ReviewFetchErrors.Inc()
	}
}

// Result maps an operation error to a bounded label value.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	kind := library.KindOf(err)
	if kind == nil {
		return "internal"
	}
	return strings.ReplaceAll(kind.Error(), " ", "_")
}
