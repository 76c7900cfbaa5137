package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadsTotal *prometheus.CounterVec
	uploadBytes  *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	m := &HTTPServerMetrics{
		registry: prometheus.NewRegistry(),
		requestTotal: counterVec("http", "requests_total",
			"Total HTTP requests processed.",
			"service", "method", "path", "status"),
		requestDuration: histogramVec("http", "request_duration_seconds",
			"HTTP request duration in seconds.",
			prometheus.DefBuckets,
			"service", "method", "path"),
		requestInFlight: serviceGauge("http", "in_flight_requests",
			"Number of in-flight HTTP requests.", service),
		uploadsTotal: counterVec("files", "uploads_total",
			"Total upload attempts by outcome.",
			"service", "status"),
		uploadBytes: histogramVec("files", "upload_size_bytes",
			"Distribution of accepted upload sizes in bytes.",
			prometheus.ExponentialBuckets(1024, 4, 10),
			"service"),
	}
	m.registry.MustRegister(m.requestTotal, m.requestDuration, m.requestInFlight, m.uploadsTotal, m.uploadBytes)
	return m
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(rec, r)

		m.requestTotal.WithLabelValues(service, r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses id-bearing paths so label cardinality stays bounded.
func normalizePath(path string) string {
	if strings.HasPrefix(path, "/v1/files/") {
		return "/v1/files/{file_id}"
	}
	return path
}

// RecordUpload counts one upload attempt; status is one of
// accepted, duplicate, rejected.
func (m *HTTPServerMetrics) RecordUpload(service, status string, sizeBytes int64) {
	if status == "" {
		status = "unknown"
	}
	m.uploadsTotal.WithLabelValues(service, status).Inc()
	if status == "accepted" && sizeBytes > 0 {
		m.uploadBytes.WithLabelValues(service).Observe(float64(sizeBytes))
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusWriter) Push(target string, opts *http.PushOptions) error {
	if pusher, ok := w.ResponseWriter.(http.Pusher); ok {
		return pusher.Push(target, opts)
	}
	return http.ErrNotSupported
}
