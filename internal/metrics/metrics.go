// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Content generation outcomes.
const (
	OutcomeProvider = "provider" // every field came from the provider
	OutcomePartial  = "partial"  // provider answered, some fields defaulted
	OutcomeFallback = "fallback" // provider failed, all fields defaulted
)

// Payment confirmation results.
const (
	PaymentApplied   = "applied"
	PaymentDuplicate = "duplicate"
	PaymentIgnored   = "ignored"
	PaymentRejected  = "rejected"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// HTTPInFlight tracks requests currently being served.
	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// ContentGenerations counts content generator results by outcome.
	ContentGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barbersites_content_generations_total",
			Help: "Site copy generations by outcome",
		},
		[]string{"outcome"},
	)

	// ContentGenerationDuration observes provider call latency.
	ContentGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "barbersites_content_generation_seconds",
			Help:    "Time spent waiting on the content provider",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		},
	)

	// PaymentConfirmations counts webhook confirmations by purpose and result.
	PaymentConfirmations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barbersites_payment_confirmations_total",
			Help: "Payment confirmation events by purpose and result",
		},
		[]string{"purpose", "result"},
	)

	// OrphanedRequests counts template requests left without content.
	OrphanedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "barbersites_orphaned_template_requests_total",
			Help: "Template requests persisted without generated content",
		},
	)
)
