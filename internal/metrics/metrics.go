// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from a rewrite run.
//
// The package exposes a narrow Backend interface (counters and timing
// observations) and a global, pluggable backend that defaults to a no-op, so
// instrumentation is always safe to call even when nothing is configured.
// Concrete systems live in subpackages (prompush, datadog) so the worker and
// scheduler never import a metrics vendor directly.
package metrics

import "time"

// Metric names emitted by this package.
const (
	FilesTotal   = "csvxform_files_total"
	FileDuration = "csvxform_file_duration_seconds"
	LinesTotal   = "csvxform_lines_total"
	BatchesTotal = "csvxform_batches_total"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

const (
	labelJob    = "job"
	labelStatus = "status"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing
// backend. Call it once at startup, before any worker runs.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordFile counts one finished file and observes how long it took,
// labelled success or failure.
func RecordFile(job string, err error, d time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	lbls := Labels{
		labelJob:    job,
		labelStatus: status,
	}
	backend.IncCounter(FilesTotal, 1, lbls)
	backend.ObserveHistogram(FileDuration, d.Seconds(), lbls)
}

// RecordLines adds delta rewritten lines.
func RecordLines(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(LinesTotal, float64(delta), Labels{labelJob: job})
}

// RecordBatches adds delta bulk writes.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{labelJob: job})
}
