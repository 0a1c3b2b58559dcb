package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Insurance service metrics
	InsuranceCalls   *prometheus.CounterVec
	InsuranceLatency prometheus.Histogram

	// Domain metrics
	EvaluationsTotal     *prometheus.CounterVec
	AuthorizationsByType *prometheus.CounterVec
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "path"}),
		InsuranceCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insurance_calls_total",
			Help:      "Total number of insurance validation calls",
		}, []string{"outcome"}),
		InsuranceLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "insurance_call_duration_seconds",
			Help:      "Duration of insurance validation calls",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5},
		}),
		EvaluationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coverage_evaluations_total",
			Help:      "Coverage evaluations by verdict",
		}, []string{"verdict"}),
		AuthorizationsByType: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorizations_created_total",
			Help:      "Authorizations created by service type",
		}, []string{"service_type"}),
	}
}
