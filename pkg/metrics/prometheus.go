// Package metrics provides Prometheus metrics for the pitch ingestion service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Ingestion
	filesIngested     *prometheus.CounterVec
	rowsParsed        prometheus.Counter
	rowsAdded         prometheus.Counter
	rowsDropped       *prometheus.CounterVec
	ingestLatency     prometheus.Histogram
	encodingsDetected *prometheus.CounterVec

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec
	subjects     prometheus.Gauge

	// Artifacts
	artifactsRendered *prometheus.CounterVec
	uploads           *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pitchtrack",
		subsystem:        "ingest",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.filesIngested = auto.NewCounterVec(
		m.counterOpts("files_total", "Uploaded files by outcome"),
		[]string{"status"},
	)
	m.rowsParsed = auto.NewCounter(m.counterOpts("rows_parsed_total", "Observations produced by normalization"))
	m.rowsAdded = auto.NewCounter(m.counterOpts("rows_added_total", "Observations newly persisted after deduplication"))
	m.rowsDropped = auto.NewCounterVec(
		m.counterOpts("rows_dropped_total", "Rows dropped by reason"),
		[]string{"reason"},
	)
	m.ingestLatency = auto.NewHistogram(m.histogramOpts("file_duration_seconds", "Time to ingest one file"))
	m.encodingsDetected = auto.NewCounterVec(
		m.counterOpts("encodings_total", "Text encodings selected by the decoder"),
		[]string{"encoding"},
	)

	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_duration_seconds", "Store operation latency"),
		[]string{"driver", "op"},
	)
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("store_errors_total", "Store operation failures"),
		[]string{"driver", "op"},
	)
	m.subjects = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "subjects",
		Help:        "Number of subjects with stored observations",
		ConstLabels: m.customLabels,
	})

	m.artifactsRendered = auto.NewCounterVec(
		m.counterOpts("artifacts_rendered_total", "Charts and tables rendered by kind"),
		[]string{"kind"},
	)
	m.uploads = auto.NewCounterVec(
		m.counterOpts("uploads_total", "Artifact uploads by sink and outcome"),
		[]string{"sink", "status"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_seconds", "HTTP request duration in seconds"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("http_errors_total", "HTTP errors by endpoint and error type"),
		[]string{"endpoint", "method", "error_type"},
	)
}

// RecordFile counts one ingested file; status is "ok" or an error kind.
func RecordFile(status string) {
	if globalManager.enabled {
		globalManager.filesIngested.WithLabelValues(status).Inc()
	}
}

func RecordRowsParsed(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.rowsParsed.Add(float64(n))
	}
}

func RecordRowsAdded(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.rowsAdded.Add(float64(n))
	}
}

// RecordRowsDropped counts rows removed for reason ("date", "duplicate").
func RecordRowsDropped(reason string, n int) {
	if globalManager.enabled && n > 0 {
		globalManager.rowsDropped.WithLabelValues(reason).Add(float64(n))
	}
}

func RecordIngestLatency(seconds float64) {
	if globalManager.enabled {
		globalManager.ingestLatency.Observe(seconds)
	}
}

func RecordEncoding(name string) {
	if globalManager.enabled {
		globalManager.encodingsDetected.WithLabelValues(name).Inc()
	}
}

func RecordStoreLatency(driver, op string, seconds float64) {
	if globalManager.enabled {
		globalManager.storeLatency.WithLabelValues(driver, op).Observe(seconds)
	}
}

func RecordStoreError(driver, op string) {
	if globalManager.enabled {
		globalManager.storeErrors.WithLabelValues(driver, op).Inc()
	}
}

func UpdateSubjects(count int) {
	if globalManager.enabled {
		globalManager.subjects.Set(float64(count))
	}
}

func RecordArtifact(kind string) {
	if globalManager.enabled {
		globalManager.artifactsRendered.WithLabelValues(kind).Inc()
	}
}

func RecordUpload(sink, status string) {
	if globalManager.enabled {
		globalManager.uploads.WithLabelValues(sink, status).Inc()
	}
}

func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, seconds float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(seconds)
	}
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it once at startup, before anything records.
func Init(opts ...Option) *Manager {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
	return globalManager
}

// Enabled reports whether the global manager records.
func Enabled() bool {
	return globalManager.enabled
}

// GetRegistry returns the registry the global manager records into.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
