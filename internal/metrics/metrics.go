// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReceiptsParsed counts receipt texts run through the parser.
	ReceiptsParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grouppay_receipts_parsed_total",
		Help: "Number of receipt texts parsed.",
	})

	// ReceiptItemsExtracted counts line items recognized across all parses.
	ReceiptItemsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grouppay_receipt_items_extracted_total",
		Help: "Number of line items extracted from parsed receipts.",
	})

	// SplitsComputed counts successful split calculations by mode.
	SplitsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grouppay_splits_computed_total",
		Help: "Number of successful split calculations.",
	}, []string{"mode"})

	// SplitValidationFailures counts split calculations rejected on input.
	SplitValidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grouppay_split_validation_failures_total",
		Help: "Number of split calculations rejected due to invalid input.",
	})

	// RequestDuration observes HTTP request latency by route and status.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grouppay_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
