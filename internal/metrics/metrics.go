// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the mapper and the JSON table utility.
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete systems (Prometheus Pushgateway, Datadog) live in subpackages,
//     mirroring how storage backends register dialects.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by this package.
const (
	OpTotal           = "recordmap_op_total"
	OpDurationSeconds = "recordmap_op_duration_seconds"
	RowsTotal         = "recordmap_json_rows_total"
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

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Reset restores the no-op backend.
func Reset() {
	mu.Lock()
	backend = nopBackend{}
	mu.Unlock()
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordOp counts one mapper operation and its latency.
//
// op is one of "save_insert", "save_update", "get", "delete" or
// "create_table".
func RecordOp(table, op string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"table":  table,
		"op":     op,
		"status": status,
	}

	b := current()
	b.IncCounter(OpTotal, 1, lbls)
	b.ObserveHistogram(OpDurationSeconds, d.Seconds(), lbls)
}

// RecordRows adds delta rows loaded from a JSON source. outcome is "loaded"
// or "rejected" (unreadable file counted as one rejection).
func RecordRows(outcome string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"outcome": outcome,
	})
}
