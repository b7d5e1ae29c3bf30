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
	evaluationsTotal          *prometheus.CounterVec
	evaluationLatencySeconds  *prometheus.HistogramVec
	evaluationScorePoints     *prometheus.HistogramVec
	attachmentUploadsTotal    *prometheus.CounterVec
	attachmentExtractWarnings prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the evaluation
// pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lecture_evaluations_total",
			Help: "Total number of lecture evaluations, by grade and evaluation method.",
		}, []string{"grade", "method"})

		evaluationLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lecture_evaluation_latency_seconds",
			Help:    "Latency distribution of full lecture evaluations.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 15.0, 30.0, 60.0},
		}, []string{"method"})

		evaluationScorePoints = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lecture_evaluation_score_points",
			Help:    "Distribution of composite evaluation scores.",
			Buckets: []float64{10, 20, 30, 40, 50, 55, 65, 75, 85, 95, 100},
		}, []string{"method"})

		attachmentUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lecture_attachment_uploads_total",
			Help: "Total number of lecture attachment uploads, by kind.",
		}, []string{"kind"})

		attachmentExtractWarnings = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lecture_attachment_extract_warnings_total",
			Help: "Attachments stored without extractable text.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			evaluationsTotal,
			evaluationLatencySeconds,
			evaluationScorePoints,
			attachmentUploadsTotal,
			attachmentExtractWarnings,
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

// Evaluations exposes the counter for completed evaluations.
func Evaluations() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsTotal
}

// EvaluationLatency exposes the latency histogram for evaluations.
func EvaluationLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return evaluationLatencySeconds
}

// EvaluationScores exposes the score distribution histogram.
func EvaluationScores() *prometheus.HistogramVec {
	RegisterMetrics()
	return evaluationScorePoints
}

// AttachmentUploads exposes the counter for attachment uploads.
func AttachmentUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return attachmentUploadsTotal
}

// AttachmentExtractWarnings exposes the counter for unreadable attachments.
func AttachmentExtractWarnings() prometheus.Counter {
	RegisterMetrics()
	return attachmentExtractWarnings
}
