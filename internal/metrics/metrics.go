// Package metrics provides Prometheus metrics for vtree backends.
//
// A Recorder owns its own registry so that several storages in one process
// (and parallel tests) do not share counters. Wrap a backend with
// Recorder.Instrument before handing it to storage.New.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation labels.
const (
	OpScan         = "scan"
	OpStat         = "stat"
	OpCreateFolder = "create_folder"
	OpCreateFile   = "create_file"
	OpRename       = "rename"
	OpMove         = "move"
	OpDelete       = "delete"
	OpOpenRead     = "open_read"
	OpOpenWrite    = "open_write"
	OpCommit       = "commit"
	OpAbort        = "abort"
	OpHash         = "hash"
	OpClose        = "close"
)

// Recorder collects backend metrics.
type Recorder struct {
	registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesRead         *prometheus.CounterVec
	bytesWritten      *prometheus.CounterVec
	treeNodes         *prometheus.GaugeVec
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vtree_backend_operations_total",
				Help: "Total number of backend operations",
			},
			[]string{"backend", "op", "result"},
		),

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vtree_backend_operation_duration_seconds",
				Help:    "Backend operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "op"},
		),

		bytesRead: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vtree_backend_bytes_read_total",
				Help: "Total bytes read from file content",
			},
			[]string{"backend"},
		),

		bytesWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vtree_backend_bytes_written_total",
				Help: "Total bytes written as file content",
			},
			[]string{"backend"},
		),

		treeNodes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vtree_tree_nodes",
				Help: "Number of folders and files in the tree",
			},
			[]string{"kind"},
		),
	}
}

// Registry returns the registry holding the recorder's collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordOperation records one backend call.
func (r *Recorder) RecordOperation(backend, op string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	r.operationsTotal.WithLabelValues(backend, op, result).Inc()
	r.operationDuration.WithLabelValues(backend, op).Observe(duration.Seconds())
}

// RecordRead adds n bytes read from file content.
func (r *Recorder) RecordRead(backend string, n int64) {
	r.bytesRead.WithLabelValues(backend).Add(float64(n))
}

// RecordWrite adds n bytes written as file content.
func (r *Recorder) RecordWrite(backend string, n int64) {
	r.bytesWritten.WithLabelValues(backend).Add(float64(n))
}

// SetTreeSize sets the folder and file gauges.
func (r *Recorder) SetTreeSize(folders, files int) {
	r.treeNodes.WithLabelValues("folder").Set(float64(folders))
	r.treeNodes.WithLabelValues("file").Set(float64(files))
}

// WriteToTextfile dumps every metric in the Prometheus text format, for
// pickup by a node exporter textfile collector.
func (r *Recorder) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
