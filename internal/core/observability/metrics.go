// Package observability exposes Prometheus metrics for the client.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fdsnws_requests_total",
			Help: "Requests sent, by service and response status.",
		},
		[]string{"service", "status"},
	)

	requestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fdsnws_request_duration_seconds",
			Help:    "Round-trip duration of service requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"service"},
	)

	decodeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fdsnws_decode_errors_total",
			Help: "Response bodies that failed to decode, by schema.",
		},
		[]string{"schema"},
	)

	reconcileWarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fdsnws_reconcile_warnings_total",
			Help: "Non-fatal reconciliation findings, by kind.",
		},
		[]string{"kind"},
	)
)

func ObserveRequest(service string, status int, durationSeconds float64) {
	requestsTotal.WithLabelValues(service, strconv.Itoa(status)).Inc()
	requestDurationSeconds.WithLabelValues(service).Observe(durationSeconds)
}

func IncDecodeError(schema string) {
	decodeErrorsTotal.WithLabelValues(schema).Inc()
}

func IncReconcileWarning(kind string) {
	reconcileWarningsTotal.WithLabelValues(kind).Inc()
}
