package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics. Methods are safe on a nil receiver.
type Metrics struct {
	// Registry scan metrics
	ScanFilesTotal   *prometheus.CounterVec
	ScanDuration     prometheus.Histogram
	ParseCacheTotal  *prometheus.CounterVec
	RegistryFiles    prometheus.Gauge
	RegistryMessages *prometheus.GaugeVec

	// Document metrics
	DocumentsTotal *prometheus.CounterVec

	// Validation metrics
	ValidationWarningsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ScanFilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnetmap_scan_files_total",
				Help: "Total number of protocol files seen by directory scans",
			},
			[]string{"result"},
		),
		ScanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dnetmap_scan_duration_seconds",
				Help:    "Directory scan duration in seconds",
				Buckets: []float64{.005, .01, .05, .1, .5, 1, 5},
			},
		),
		ParseCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnetmap_parse_cache_total",
				Help: "Parse cache lookups",
			},
			[]string{"result"},
		),
		RegistryFiles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dnetmap_registry_files",
				Help: "Number of protocol files in the current registry snapshot",
			},
		),
		RegistryMessages: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dnetmap_registry_messages",
				Help: "Number of messages in the current registry snapshot",
			},
			[]string{"direction"},
		),
		DocumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnetmap_documents_total",
				Help: "Mapping document operations",
			},
			[]string{"operation", "status"},
		),
		ValidationWarningsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnetmap_validation_warnings_total",
				Help: "Validation warnings reported",
			},
			[]string{"kind"},
		),
	}

	if registry != nil {
		registry.MustRegister(
			m.ScanFilesTotal,
			m.ScanDuration,
			m.ParseCacheTotal,
			m.RegistryFiles,
			m.RegistryMessages,
			m.DocumentsTotal,
			m.ValidationWarningsTotal,
		)
	}

	return m
}

// ObserveScan records one completed directory scan
func (m *Metrics) ObserveScan(d time.Duration, parsed, skipped int) {
	if m == nil {
		return
	}
	m.ScanDuration.Observe(d.Seconds())
	m.ScanFilesTotal.WithLabelValues("parsed").Add(float64(parsed))
	m.ScanFilesTotal.WithLabelValues("skipped").Add(float64(skipped))
}

// SetRegistrySize records the size of the active snapshot
func (m *Metrics) SetRegistrySize(files, clientMessages, serverMessages int) {
	if m == nil {
		return
	}
	m.RegistryFiles.Set(float64(files))
	m.RegistryMessages.WithLabelValues("c2s").Set(float64(clientMessages))
	m.RegistryMessages.WithLabelValues("s2c").Set(float64(serverMessages))
}

// RecordCacheLookup records a parse cache hit or miss
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ParseCacheTotal.WithLabelValues(result).Inc()
}

// RecordDocument records a document operation (load, save, export, import)
func (m *Metrics) RecordDocument(operation string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DocumentsTotal.WithLabelValues(operation, status).Inc()
}

// RecordWarning records one validation warning
func (m *Metrics) RecordWarning(kind string) {
	if m == nil {
		return
	}
	m.ValidationWarningsTotal.WithLabelValues(kind).Inc()
}
