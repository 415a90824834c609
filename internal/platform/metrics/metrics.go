// Package metrics holds the Prometheus collectors for the fraud engine. A
// private registry keeps tests free of duplicate-registration panics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	batchesTotal       prometheus.Counter
	batchSize          prometheus.Histogram
	batchDuration      prometheus.Histogram
	fetchFailures      prometheus.Counter
	verdictsTotal      *prometheus.CounterVec
	verdictWriteErrors prometheus.Counter
	auditWriteFailures prometheus.Counter
	riskScores         prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	return &Metrics{
		registry: registry,
		batchesTotal: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "bankguard_batches_total",
			Help: "Total number of completed watch-loop iterations",
		}),
		batchSize: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "bankguard_batch_size",
			Help:    "Number of pending transactions fetched per iteration",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500},
		}),
		batchDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "bankguard_batch_duration_seconds",
			Help:    "Time spent evaluating and writing one batch",
			Buckets: prometheus.DefBuckets,
		}),
		fetchFailures: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "bankguard_fetch_failures_total",
			Help: "Iterations abandoned because fetching pending transactions failed",
		}),
		verdictsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "bankguard_verdicts_total",
			Help: "Verdicts written, labeled by terminal status and triggering rule",
		}, []string{"status", "rule"}),
		verdictWriteErrors: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "bankguard_verdict_write_errors_total",
			Help: "Evaluated transactions whose status write failed and stayed PENDING",
		}),
		auditWriteFailures: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "bankguard_audit_write_failures_total",
			Help: "Rejections whose audit record could not be appended",
		}),
		riskScores: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "bankguard_rejection_risk_score",
			Help:    "Distribution of risk scores across rejections",
			Buckets: []float64{0, 20, 40, 60, 80, 90, 95, 100},
		}),
	}
}

func (m *Metrics) ObserveBatch(size int, duration time.Duration) {
	m.batchesTotal.Inc()
	m.batchSize.Observe(float64(size))
	m.batchDuration.Observe(duration.Seconds())
}

func (m *Metrics) IncrementFetchFailures() {
	m.fetchFailures.Inc()
}

func (m *Metrics) RecordVerdict(status, rule string) {
	m.verdictsTotal.WithLabelValues(status, rule).Inc()
}

func (m *Metrics) RecordRejectionScore(score int) {
	m.riskScores.Observe(float64(score))
}

func (m *Metrics) IncrementVerdictWriteErrors() {
	m.verdictWriteErrors.Inc()
}

func (m *Metrics) IncrementAuditWriteFailures() {
	m.auditWriteFailures.Inc()
}

// Handler serves the registry for the ops /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
