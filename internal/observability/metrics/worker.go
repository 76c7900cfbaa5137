package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec
	parseDuration   *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	m := &WorkerMetrics{
		registry: prometheus.NewRegistry(),
		processTotal: counterVec("worker", "file_process_total",
			"Total processed files by status.",
			"service", "status"),
		processDuration: histogramVec("worker", "file_process_duration_seconds",
			"File processing duration in seconds by status.",
			prometheus.DefBuckets,
			"service", "status"),
		processInFlight: serviceGauge("worker", "file_process_in_flight",
			"Number of in-flight file processing tasks.", service),
		queueLag: histogramVec("worker", "queue_lag_seconds",
			"Delay between file upload and processing start.",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			"service"),
		parseDuration: histogramVec("worker", "parse_duration_seconds",
			"Text extraction duration in seconds by file type.",
			prometheus.DefBuckets,
			"service", "file_type"),
	}
	m.registry.MustRegister(m.processTotal, m.processDuration, m.processInFlight, m.queueLag, m.parseDuration)
	return m
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartFile() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishFile(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) ObserveParse(service, fileType string, duration time.Duration) {
	if fileType == "" {
		fileType = "unknown"
	}
	m.parseDuration.WithLabelValues(service, fileType).Observe(duration.Seconds())
}
