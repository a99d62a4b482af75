package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce              sync.Once
	httpRequestsTotal         *prometheus.CounterVec
	httpLatencySeconds        *prometheus.HistogramVec
	httpErrorsTotal           *prometheus.CounterVec
	sweepRunsTotal            *prometheus.CounterVec
	submissionsCompletedTotal *prometheus.CounterVec
	credentialExpiriesTotal   *prometheus.CounterVec
	notificationsPublished    *prometheus.CounterVec
	sseClientsActive          prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		sweepRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sweep_runs_total",
			Help: "Total number of submission reconciliation sweeps started.",
		}, []string{"scope"})

		submissionsCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submissions_completed_total",
			Help: "Pending submissions marked completed during reconciliation, by platform and verification path.",
		}, []string{"platform", "path"})

		credentialExpiriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credential_expiries_total",
			Help: "Platform session cookies detected as expired during reconciliation.",
		}, []string{"platform"})

		notificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total number of notifications published, by type.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sse_clients_active",
			Help: "Number of currently connected notification stream clients.",
		})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			sweepRunsTotal, submissionsCompletedTotal, credentialExpiriesTotal,
			notificationsPublished, sseClientsActive,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SweepRuns exposes the counter for reconciliation sweep starts.
func SweepRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return sweepRunsTotal
}

// SubmissionsCompleted exposes the counter for completed submissions.
func SubmissionsCompleted() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsCompletedTotal
}

// CredentialExpiries exposes the counter for expired platform cookies.
func CredentialExpiries() *prometheus.CounterVec {
	RegisterMetrics()
	return credentialExpiriesTotal
}

// NotificationsPublishedTotal exposes the counter for published notifications.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublished
}

// SSEClientsActive exposes the gauge of connected stream clients.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}
