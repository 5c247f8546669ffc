package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/examdesk/examdesk-api/internal/models"
)

// MetricsService owns a private registry with HTTP, batch dispatch and CRM
// request instrumentation.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	batchOps      *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
	crmRequests   *prometheus.CounterVec
	crmDuration   *prometheus.HistogramVec
}

// NewMetricsService constructs the service and registers all collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &MetricsService{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "examdesk_http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "examdesk_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		batchOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "examdesk_batch_operations_total",
			Help: "Dispatched batch operations by type and outcome.",
		}, []string{"operation", "outcome"}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "examdesk_batch_operation_duration_seconds",
			Help:    "Batch dispatch latency by operation.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		crmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "examdesk_crm_requests_total",
			Help: "Outgoing CRM requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		crmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "examdesk_crm_request_duration_seconds",
			Help:    "CRM request latency by operation.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
	}
	registry.MustRegister(s.httpRequests, s.httpDuration, s.batchOps, s.batchDuration, s.crmRequests, s.crmDuration)
	return s
}

// ObserveHTTP records one served HTTP request.
func (s *MetricsService) ObserveHTTP(method, path string, status int, duration time.Duration) {
	s.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	s.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveBatch records one dispatched batch operation.
func (s *MetricsService) ObserveBatch(op models.BatchOperation, success bool, duration time.Duration) {
	s.batchOps.WithLabelValues(string(op), outcome(success)).Inc()
	s.batchDuration.WithLabelValues(string(op)).Observe(duration.Seconds())
}

// ObserveCRM records one outgoing CRM request.
func (s *MetricsService) ObserveCRM(operation string, duration time.Duration, err error) {
	s.crmRequests.WithLabelValues(operation, outcome(err == nil)).Inc()
	s.crmDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Handler serves the scrape endpoint for this registry only.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
