package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_convert_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_convert_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_convert_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Conversion metrics
var (
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_convert_conversions_total",
			Help: "Total number of conversion jobs by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	ConversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_convert_conversion_duration_seconds",
			Help:    "Conversion job duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)

	ConversionInputBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_convert_conversion_input_bytes",
			Help:    "Size of conversion job input payloads",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
		[]string{"operation"},
	)

	ConversionOutputBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_convert_conversion_output_bytes",
			Help:    "Size of conversion job output payloads",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
		[]string{"operation"},
	)

	EngineLoadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_convert_engine_loads_total",
			Help: "Total number of transcoding engine initializations",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_convert_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_convert_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)
