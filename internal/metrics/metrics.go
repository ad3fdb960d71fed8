// Package metrics records operational metrics for the clinetl stages behind a
// pluggable backend.
//
// The default backend is a no-op, so every Record* call is safe even when no
// metrics system is configured. Concrete systems live in subpackages
// (prompush for a Prometheus Pushgateway, datadog for DogStatsD) and are
// installed once at startup with SetBackend.
package metrics

import "time"

// Metric names shared by all backends.
const (
	StepTotal           = "clinetl_step_total"
	StepDurationSeconds = "clinetl_step_duration_seconds"
	RowsTotal           = "clinetl_rows_total"
	BatchesTotal        = "clinetl_batches_total"
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

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels) {}

func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}

func (nopBackend) Flush() error { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Reset restores the no-op backend.
func Reset() {
	backend = nopBackend{}
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep counts one execution of a stage and observes its duration,
// labelled by outcome.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for a stage.
//
// Kinds used by the stages:
//   - "read"      rows decoded from the source
//   - "selected"  rows kept by the filter
//   - "written"   rows the store reported as written
//   - "skipped"   rows or documents dropped as unusable
func RecordRows(job, step, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"step": step,
		"kind": kind,
	})
}

// RecordBatches increments the flushed-batch counter for a stage.
func RecordBatches(job, step string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{
		"job":  job,
		"step": step,
	})
}
