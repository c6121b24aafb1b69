package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the collection persist path.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	persistDuration *prometheus.HistogramVec
	persistTotal    *prometheus.CounterVec
	enrollmentGauge prometheus.Gauge
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	persistDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "collection_persist_duration_seconds",
		Help:    "Duration of collection document writes to the blob store",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection"})

	persistTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collection_persist_total",
		Help: "Total collection document writes",
	}, []string{"collection"})

	enrollmentGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "enrollments_active",
		Help: "Number of active enrollments",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, persistDuration, persistTotal, enrollmentGauge, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		persistDuration: persistDuration,
		persistTotal:    persistTotal,
		enrollmentGauge: enrollmentGauge,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request timing and counts.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObservePersist records a collection document write. Wired into the
// store's persist hook so every blob write is measured.
func (m *MetricsService) ObservePersist(collection string, duration time.Duration) {
	if m == nil {
		return
	}
	m.persistDuration.WithLabelValues(collection).Observe(duration.Seconds())
	m.persistTotal.WithLabelValues(collection).Inc()
}

// SetActiveEnrollments tracks the current enrollment count.
func (m *MetricsService) SetActiveEnrollments(n int) {
	if m == nil {
		return
	}
	m.enrollmentGauge.Set(float64(n))
}
