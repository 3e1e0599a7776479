package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aurum"

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Ledger metrics
	PaymentTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_transitions_total",
			Help:      "Payments moved into a status (pending on report)",
		},
		[]string{"status"},
	)

	LedgerConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_conflicts_total",
			Help:      "Verify/reject attempts on payments that were no longer pending",
		},
		[]string{"operation"},
	)

	LedgerDrift = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_drifting_drivers",
			Help:      "Drivers whose balance differed from their verified payments at the last reconciliation",
		},
	)

	// Integration metrics
	IntegrationDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integration_deliveries_total",
			Help:      "Outbound WAHA/n8n deliveries by result",
		},
		[]string{"integration", "result"},
	)

	// Auth metrics
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by result",
		},
		[]string{"result"},
	)

	VisitsCounted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visits_counted_total",
			Help:      "Visits recorded by this instance",
		},
	)
)
