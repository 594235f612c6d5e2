// Package metrics exposes Prometheus instruments for an indexing run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the instruments of one run, registered on their own
// registry so runs and tests do not collide.
type Metrics struct {
	Registry *prometheus.Registry

	FilesIndexed  prometheus.Counter
	FilesAborted  prometheus.Counter
	Occurrences   *prometheus.CounterVec
	Symbols       prometheus.Counter
	Diagnostics   prometheus.Counter
	IndexDuration prometheus.Histogram
	ParseDuration prometheus.Histogram
}

// New creates and registers the instruments.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		FilesIndexed: f.NewCounter(prometheus.CounterOpts{
			Name: "pyscip_files_indexed_total",
			Help: "Total number of files indexed successfully.",
		}),
		FilesAborted: f.NewCounter(prometheus.CounterOpts{
			Name: "pyscip_files_aborted_total",
			Help: "Total number of files whose indexing was aborted.",
		}),
		Occurrences: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pyscip_occurrences_total",
			Help: "Total number of occurrences emitted, by role.",
		}, []string{"role"}),
		Symbols: f.NewCounter(prometheus.CounterOpts{
			Name: "pyscip_symbols_total",
			Help: "Total number of symbol information records emitted.",
		}),
		Diagnostics: f.NewCounter(prometheus.CounterOpts{
			Name: "pyscip_diagnostics_total",
			Help: "Total number of recoverable indexing diagnostics.",
		}),
		IndexDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pyscip_index_file_seconds",
			Help:    "Time spent indexing a single file.",
			Buckets: prometheus.DefBuckets,
		}),
		ParseDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pyscip_parse_seconds",
			Help:    "Time spent parsing and binding the project.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveFile records the duration of one file.
func (m *Metrics) ObserveFile(d time.Duration) {
	if m == nil {
		return
	}
	m.IndexDuration.Observe(d.Seconds())
}

// WriteTextfile writes the registry in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
