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

	analysisTotal       *prometheus.CounterVec
	analysisDuration    *prometheus.HistogramVec
	analysisInFlight    prometheus.Gauge
	analysisClauses     *prometheus.HistogramVec
	analysisEntities    *prometheus.HistogramVec
	classificationTotal *prometheus.CounterVec
	synthesisTotal      *prometheus.CounterVec
	synthesisDuration   *prometheus.HistogramVec
	insightsTotal       *prometheus.CounterVec
	translationTotal    *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ccl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ccl",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	analysisTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccl",
			Subsystem: "analysis",
			Name:      "documents_total",
			Help:      "Total analyzed documents by status.",
		},
		[]string{"service", "status"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ccl",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Document analysis duration in seconds by status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	analysisInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ccl",
			Subsystem: "analysis",
			Name:      "in_flight",
			Help:      "Number of in-flight document analyses.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	analysisClauses := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ccl",
			Subsystem: "analysis",
			Name:      "clauses",
			Help:      "Distribution of clauses found per analyzed document.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 48, 100, 200},
		},
		[]string{"service"},
	)
	analysisEntities := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ccl",
			Subsystem: "analysis",
			Name:      "entities",
			Help:      "Distribution of entities found per analyzed document.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 250},
		},
		[]string{"service"},
	)
	classificationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccl",
			Subsystem: "analysis",
			Name:      "classifications_total",
			Help:      "Total document classifications by method.",
		},
		[]string{"service", "method"},
	)
	synthesisTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccl",
			Subsystem: "speech",
			Name:      "synthesis_total",
			Help:      "Total speech synthesis requests by status.",
		},
		[]string{"service", "status"},
	)
	synthesisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ccl",
			Subsystem: "speech",
			Name:      "synthesis_duration_seconds",
			Help:      "Speech synthesis duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	insightsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccl",
			Subsystem: "insights",
			Name:      "requests_total",
			Help:      "Total insight generation requests by status.",
		},
		[]string{"service", "status"},
	)
	translationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccl",
			Subsystem: "translation",
			Name:      "requests_total",
			Help:      "Total translation requests by status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		analysisTotal,
		analysisDuration,
		analysisInFlight,
		analysisClauses,
		analysisEntities,
		classificationTotal,
		synthesisTotal,
		synthesisDuration,
		insightsTotal,
		translationTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		analysisTotal:       analysisTotal,
		analysisDuration:    analysisDuration,
		analysisInFlight:    analysisInFlight,
		analysisClauses:     analysisClauses,
		analysisEntities:    analysisEntities,
		classificationTotal: classificationTotal,
		synthesisTotal:      synthesisTotal,
		synthesisDuration:   synthesisDuration,
		insightsTotal:       insightsTotal,
		translationTotal:    translationTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/static/audio/"):
		return "/static/audio/{file}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) StartAnalysis() {
	m.analysisInFlight.Inc()
}

func (m *HTTPServerMetrics) FinishAnalysis(service, status string, duration time.Duration, clauses, entities int) {
	m.analysisInFlight.Dec()

	m.analysisTotal.WithLabelValues(service, status).Inc()
	m.analysisDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if status == "success" {
		m.analysisClauses.WithLabelValues(service).Observe(float64(clauses))
		m.analysisEntities.WithLabelValues(service).Observe(float64(entities))
	}
}

func (m *HTTPServerMetrics) RecordClassification(service, method string) {
	if method == "" {
		method = "unknown"
	}
	m.classificationTotal.WithLabelValues(service, method).Inc()
}

func (m *HTTPServerMetrics) RecordSynthesis(service string, duration time.Duration, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	m.synthesisTotal.WithLabelValues(service, status).Inc()
	m.synthesisDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordInsights(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.insightsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordTranslation(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.translationTotal.WithLabelValues(service, status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
