package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestCounter counts HTTP requests by method, route and status.
	HTTPRequestCounter *prometheus.CounterVec

	// HTTPRequestDuration observes HTTP request latencies.
	HTTPRequestDuration *prometheus.HistogramVec

	// StorageUploadCounter counts asset uploads by provider and outcome.
	StorageUploadCounter *prometheus.CounterVec

	// StorageUploadDuration observes per-file upload latencies by provider.
	StorageUploadDuration *prometheus.HistogramVec
)

func init() {
	HTTPRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estatelist_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "estatelist_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	StorageUploadCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "estatelist_storage_uploads_total",
			Help: "Total number of asset uploads by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	StorageUploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "estatelist_storage_upload_duration_seconds",
			Help:    "Histogram of per-file upload latencies.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
}
