// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the operation labels (table, op, status) onto Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead of
//     exposing an HTTP scrape endpoint, which suits a short-lived CLI.
package prompush

import (
	"fmt"

	"recordmap/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultJob is the Pushgateway grouping job used when none is configured.
const DefaultJob = "recordmap"

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	opCounter  *prometheus.CounterVec // recordmap_op_total
	opDuration *prometheus.SummaryVec // recordmap_op_duration_seconds
	rowCounter *prometheus.CounterVec // recordmap_json_rows_total
}

var opLabels = []string{"table", "op", "status"}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name; empty means DefaultJob.
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = DefaultJob
	}

	reg := prometheus.NewRegistry()

	opCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.OpTotal,
			Help: "Total number of mapper operations, partitioned by table, op, and status.",
		},
		opLabels,
	)
	opDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.OpDurationSeconds,
			Help:       "Duration of mapper operations in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		opLabels,
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "JSON rows read by the table utility, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	for name, c := range map[string]prometheus.Collector{
		"op counter":  opCounter,
		"op summary":  opDuration,
		"row counter": rowCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	return &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        reg,
		opCounter:  opCounter,
		opDuration: opDuration,
		rowCounter: rowCounter,
	}, nil
}

// IncCounter implements metrics.Backend. Unknown metric names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.OpTotal:
		if b.opCounter == nil {
			return
		}
		b.opCounter.WithLabelValues(labels["table"], labels["op"], labels["status"]).Add(delta)

	case metrics.RowsTotal:
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["outcome"]).Add(delta)
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.OpDurationSeconds || b.opDuration == nil {
		return
	}
	b.opDuration.WithLabelValues(labels["table"], labels["op"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
