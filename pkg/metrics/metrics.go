// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "finscope"

// HTTPRequestsTotal counts served requests.
// Labels: method, route (chi pattern), status.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// OTPIssuedTotal counts verification codes stored and handed to the mailer.
var OTPIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_issued_total",
		Help:      "Total number of verification codes issued.",
	},
)

// OTPVerificationsTotal counts verification attempts.
// Label result: success, rejected, rate_limited.
var OTPVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_verifications_total",
		Help:      "Total number of verification code checks, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts credential checks.
// Label result: success, invalid_credentials, inactive, not_found.
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of password checks, by result.",
	},
	[]string{"result"},
)

// MaintenanceDeletedTotal counts rows removed by the background janitor.
var MaintenanceDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "maintenance_deleted_rows_total",
		Help:      "Rows removed by periodic cleanup, by table.",
	},
	[]string{"table"},
)
