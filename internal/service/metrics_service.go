package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns a private prometheus registry so tests can build
// as many instances as they need without duplicate-collector panics.
type MetricsService struct {
	registry *prometheus.Registry

	httpDuration  *prometheus.HistogramVec
	httpTotal     *prometheus.CounterVec
	solveDuration *prometheus.HistogramVec
	solveTotal    *prometheus.CounterVec
	sectionPool   prometheus.Histogram
}

// NewMetricsService registers all collectors on a fresh registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method, path and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		solveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "solve_duration_seconds",
			Help:    "Wall-clock solve time by terminal status.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"status"}),
		solveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solves_total",
			Help: "Total solve runs by terminal status.",
		}, []string{"status"}),
		sectionPool: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "solve_section_pool_size",
			Help:    "Candidate section count per solve after filtering.",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
	}

	registry.MustRegister(
		m.httpDuration,
		m.httpTotal,
		m.solveDuration,
		m.solveTotal,
		m.sectionPool,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "goroutines_count",
			Help: "Current number of goroutines.",
		}, func() float64 { return float64(runtime.NumGoroutine()) }),
	)
	return m
}

// Handler serves the registry in the standard exposition format.
func (m *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one completed HTTP request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.httpTotal.WithLabelValues(method, path, code).Inc()
}

// ObserveSolve records one completed solve run.
func (m *MetricsService) ObserveSolve(status string, duration time.Duration, poolSize int) {
	m.solveDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.solveTotal.WithLabelValues(status).Inc()
	m.sectionPool.Observe(float64(poolSize))
}
