package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PaymentsAllocated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_allocated_total",
			Help: "Payments recorded and matched against rent obligations",
		},
	)

	UnallocatedRemainders = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_unallocated_remainders_total",
			Help: "Payments that left a remainder no open obligation could absorb",
		},
	)

	ChequesCleared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cheques_cleared_total",
			Help: "Post-dated cheques that cleared and produced a payment",
		},
	)

	ChequesBounced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cheques_bounced_total",
			Help: "Post-dated cheques returned by the bank",
		},
	)

	GatewayWebhooks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_webhooks_total",
			Help: "Payment gateway webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)
)
