package storage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MustRegisterMetrics will register all storage related metrics on the given registry.
// If metrics with the same name already exist on the registry this function will panic.
func MustRegisterMetrics(registry prometheus.Registerer) {
	registry.MustRegister(sessionCounter, statementCounter, statementDuration)
}

func sampleStatement(action string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	labels := prometheus.Labels{
		"status": status,
		"action": action,
	}
	statementCounter.With(labels).Inc()
	statementDuration.With(labels).Observe(elapsed.Seconds())
}

func sampleSession(report *CloseReport) {
	labels := prometheus.Labels{
		"outcome": report.Outcome(),
		"status":  "ok",
	}
	if report.Failed() {
		labels["status"] = "error"
	}
	sessionCounter.With(labels).Inc()
}

var (
	sessionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_sessions_total",
			Help: "Closed storage sessions by transaction outcome",
		},
		[]string{"outcome", "status"},
	)
	statementCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_statements_total",
			Help: "Executed storage statements",
		},
		[]string{"status", "action"},
	)
	statementDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_statement_duration_seconds",
			Help:    "Time spent compiling, executing and materializing a statement",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "action"},
	)
)
