// Package metrics provides Prometheus metrics for the reward importer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the importer. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// File metrics
	FilesProcessed    *prometheus.CounterVec
	LastFileTimestamp *prometheus.GaugeVec
	FileDuration      *prometheus.HistogramVec

	// Record metrics
	RecordsRouted  *prometheus.CounterVec
	RecordsDropped *prometheus.CounterVec

	// Write metrics
	RowsWritten        *prometheus.CounterVec
	StatementsExecuted *prometheus.CounterVec
	TableRows          *prometheus.HistogramVec

	// Error metrics
	SourceErrors  *prometheus.CounterVec
	StorageErrors *prometheus.CounterVec
	RetryAttempts *prometheus.CounterVec
}

var defaultMetrics *Metrics

// Init registers the metrics with the default registerer and makes them
// available through Get. Call this once at startup.
func Init(namespace string) *Metrics {
	defaultMetrics = New(namespace, prometheus.DefaultRegisterer)
	return defaultMetrics
}

// Get returns the global metrics instance.
// Returns nil if Init has not been called.
func Get() *Metrics {
	return defaultMetrics
}

// New creates the metrics on reg.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "oracle_persist"
	}
	f := promauto.With(reg)

	return &Metrics{
		FilesProcessed: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_processed_total",
				Help:      "Total number of files processed, by outcome",
			},
			[]string{"file_type", "status"},
		),
		LastFileTimestamp: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_file_timestamp_seconds",
				Help:      "Timestamp encoded in the name of the last imported file",
			},
			[]string{"file_type"},
		),
		FileDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "file_duration_seconds",
				Help:      "Time to decode and persist one file",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s to ~400s
			},
			[]string{"file_type"},
		),
		RecordsRouted: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_routed_total",
				Help:      "Total number of decoded records, by reward variant",
			},
			[]string{"file_type", "kind"},
		),
		RecordsDropped: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_dropped_total",
				Help:      "Total number of records dropped for having no reward variant",
			},
			[]string{"file_type"},
		),
		RowsWritten: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_written_total",
				Help:      "Total number of rows committed",
			},
			[]string{"table"},
		),
		StatementsExecuted: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "insert_statements_total",
				Help:      "Total number of multi-row INSERT statements committed",
			},
			[]string{"table"},
		),
		TableRows: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "table_rows_per_file",
				Help:      "Rows written to a table by one file",
				Buckets:   prometheus.ExponentialBuckets(10, 4, 10), // 10 to ~2.6M
			},
			[]string{"table"},
		),
		SourceErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_errors_total",
				Help:      "Total number of file listing or read errors",
			},
			[]string{"source_type"},
		),
		StorageErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_errors_total",
				Help:      "Total number of failed table writes",
			},
			[]string{"driver"},
		),
		RetryAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retry_attempts_total",
				Help:      "Total number of retry attempts",
			},
			[]string{"operation"},
		),
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// StartServer starts an HTTP server for Prometheus metrics scraping.
// Blocks until the server exits.
func StartServer(address string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return http.ListenAndServe(address, mux)
}

// IncFilesProcessed counts one finished file. status is "ok" or "failed".
func (m *Metrics) IncFilesProcessed(fileType, status string) {
	if m == nil {
		return
	}
	m.FilesProcessed.WithLabelValues(fileType, status).Inc()
}

// SetLastFileTimestamp records the name timestamp of the last imported file.
func (m *Metrics) SetLastFileTimestamp(fileType string, unixSeconds float64) {
	if m == nil {
		return
	}
	m.LastFileTimestamp.WithLabelValues(fileType).Set(unixSeconds)
}

// ObserveFileDuration records the time spent on one file.
func (m *Metrics) ObserveFileDuration(fileType string, seconds float64) {
	if m == nil {
		return
	}
	m.FileDuration.WithLabelValues(fileType).Observe(seconds)
}

// AddRecordsRouted adds n records of kind.
func (m *Metrics) AddRecordsRouted(fileType, kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RecordsRouted.WithLabelValues(fileType, kind).Add(float64(n))
}

// AddRecordsDropped adds n records without a variant.
func (m *Metrics) AddRecordsDropped(fileType string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RecordsDropped.WithLabelValues(fileType).Add(float64(n))
}

// ObserveTableWrite records the committed rows and statements of one table.
func (m *Metrics) ObserveTableWrite(table string, rows, statements int) {
	if m == nil {
		return
	}
	m.RowsWritten.WithLabelValues(table).Add(float64(rows))
	m.StatementsExecuted.WithLabelValues(table).Add(float64(statements))
	m.TableRows.WithLabelValues(table).Observe(float64(rows))
}

// IncSourceErrors increments the source errors counter.
func (m *Metrics) IncSourceErrors(sourceType string) {
	if m == nil {
		return
	}
	m.SourceErrors.WithLabelValues(sourceType).Inc()
}

// IncStorageErrors increments the storage errors counter.
func (m *Metrics) IncStorageErrors(driver string) {
	if m == nil {
		return
	}
	m.StorageErrors.WithLabelValues(driver).Inc()
}

// IncRetryAttempts increments the retry attempts counter.
func (m *Metrics) IncRetryAttempts(operation string) {
	if m == nil {
		return
	}
	m.RetryAttempts.WithLabelValues(operation).Inc()
}
