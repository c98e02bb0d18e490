package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Request metrics
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	requestErrors   *prometheus.CounterVec

	// Store metrics
	appendedBytes prometheus.Counter
	storeRecords  prometheus.Gauge
	storeErrors   *prometheus.CounterVec
}

// NewMetrics creates a new metrics instance with its own registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		// Request metrics
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_request_errors_total",
				Help: "Total number of HTTP request errors",
			},
			[]string{"method", "path", "status"},
		),

		// Store metrics
		appendedBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "store_appended_bytes_total",
				Help: "Total payload bytes appended to the store",
			},
		),
		storeRecords: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "store_records_total",
				Help: "Total number of records in the store",
			},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_errors_total",
				Help: "Total number of store operation errors",
			},
			[]string{"operation"},
		),
	}
}

// Handler returns the Prometheus exposition handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		m.requestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(duration)
		m.requestTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()

		if rw.statusCode >= 400 {
			m.requestErrors.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		}
	})
}

// ObserveAppend records a successful append
func (m *Metrics) ObserveAppend(size int, records uint64) {
	m.appendedBytes.Add(float64(size))
	m.storeRecords.Set(float64(records))
}

// RecordStoreError records a failed store operation
func (m *Metrics) RecordStoreError(operation string) {
	m.storeErrors.WithLabelValues(operation).Inc()
}
