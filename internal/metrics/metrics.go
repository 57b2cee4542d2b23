package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "om_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "om_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route"},
	)

	// Business metrics
	ReadReceiptQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "om_read_receipt_queries_total",
			Help: "Read receipt queries by outcome",
		},
		[]string{"outcome"}, // "ok", "invalid_message", "error"
	)

	ReadReceiptQueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "om_read_receipt_query_duration_seconds",
			Help:    "Read receipt query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25},
		},
	)

	ReadMarksWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "om_read_marks_written_total",
			Help: "Read mark upserts requested",
		},
	)

	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "om_messages_sent_total",
			Help: "Total messages sent",
		},
		[]string{"kind"}, // "direct" or "group"
	)

	// Infrastructure metrics
	AccountCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "om_account_cache_lookups_total",
			Help: "Account status cache lookups",
		},
		[]string{"result"}, // "hit" or "miss"
	)
)

const (
	OutcomeOK             = "ok"
	OutcomeInvalidMessage = "invalid_message"
	OutcomeError          = "error"
)
