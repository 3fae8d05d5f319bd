package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leadintake"

// Metrics holds the service collectors
type Metrics struct {
	BackendRequests    *prometheus.CounterVec
	BackendLatency     *prometheus.HistogramVec
	Submissions        *prometheus.CounterVec
	ValidationFailures prometheus.Counter
	StaleSchemas       prometheus.Counter
	Uploads            *prometheus.CounterVec
	ActiveSessions     prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Outbound backend calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		BackendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_seconds",
			Help:      "Outbound backend call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Lead submissions by mode and outcome.",
		}, []string{"mode", "outcome"}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Submissions rejected by validation.",
		}),
		StaleSchemas: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_schema_results_total",
			Help:      "Schema fetch results dropped because a newer selection superseded them.",
		}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_uploads_total",
			Help:      "Document uploads by outcome.",
		}, []string{"outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Open form sessions.",
		}),
	}

	reg.MustRegister(
		m.BackendRequests,
		m.BackendLatency,
		m.Submissions,
		m.ValidationFailures,
		m.StaleSchemas,
		m.Uploads,
		m.ActiveSessions,
	)
	return m
}

// NewNop returns collectors registered nowhere, for tests and tools.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveBackend records one outbound call.
func (m *Metrics) ObserveBackend(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.BackendRequests.WithLabelValues(operation, outcome).Inc()
	m.BackendLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// Handler exposes the registry on a gin route.
func Handler(g prometheus.Gatherer) gin.HandlerFunc {
	h := promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
