package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"recordmap/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// readCounterValue reads the current value of a Counter for assertions in tests.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	if m.GetCounter() == nil {
		t.Fatalf("metric did not contain Counter value")
	}
	return m.GetCounter().GetValue()
}

// readSummaryCountSum reads sample count and sum from a SummaryVec for assertions in tests.
func readSummaryCountSum(t *testing.T, v *prometheus.SummaryVec, labels ...string) (uint64, float64) {
	t.Helper()

	m := &dto.Metric{}
	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	if !ok {
		t.Fatalf("SummaryVec.WithLabelValues(...) does not implement prometheus.Metric")
	}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	if m.GetSummary() == nil {
		t.Fatalf("metric did not contain Summary value")
	}
	sum := m.GetSummary()
	return sum.GetSampleCount(), sum.GetSampleSum()
}

// TestNewBackend constructs backends with different inputs and validates
// field initialization and defaults.
func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{
			name:       "missing gateway URL returns error",
			jobName:    "cli",
			gatewayURL: "",
			wantErr:    true,
		},
		{
			name:        "empty job name uses default",
			gatewayURL:  "http://pushgateway:9091",
			wantJobName: DefaultJob,
		},
		{
			name:        "explicit job name is preserved",
			jobName:     "nightly-import",
			gatewayURL:  "http://pushgateway:9091",
			wantJobName: "nightly-import",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewBackend(%q, %q) error = nil, want non-nil", tt.jobName, tt.gatewayURL)
				}
				if b != nil {
					t.Fatalf("NewBackend(%q, %q) backend = %v, want nil", tt.jobName, tt.gatewayURL, b)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewBackend(%q, %q) error = %v, want nil", tt.jobName, tt.gatewayURL, err)
			}
			if b.jobName != tt.wantJobName {
				t.Fatalf("backend.jobName = %q, want %q", b.jobName, tt.wantJobName)
			}
			if b.opCounter == nil || b.opDuration == nil || b.rowCounter == nil {
				t.Fatalf("collectors not initialized: %+v", b)
			}
		})
	}
}

// TestIncCounter verifies that IncCounter routes updates to the correct
// Prometheus collectors and ignores unknown metric names.
func TestIncCounter(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	ok := metrics.Labels{"table": "user", "op": "get", "status": "success"}
	b.IncCounter(metrics.OpTotal, 2, ok)
	b.IncCounter(metrics.OpTotal, 1, ok)
	b.IncCounter(metrics.RowsTotal, 5, metrics.Labels{"outcome": "loaded"})
	b.IncCounter("unknown_metric", 10, metrics.Labels{"foo": "bar"})

	if got := readCounterValue(t, b.opCounter.WithLabelValues("user", "get", "success")); got != 3 {
		t.Fatalf("opCounter value = %v, want 3", got)
	}
	if got := readCounterValue(t, b.rowCounter.WithLabelValues("loaded")); got != 5 {
		t.Fatalf("rowCounter value = %v, want 5", got)
	}
	if got := readCounterValue(t, b.opCounter.WithLabelValues("user", "delete", "success")); got != 0 {
		t.Fatalf("untouched opCounter value = %v, want 0", got)
	}
}

// TestIncCounterNilMetrics ensures a zero Backend does not panic.
func TestIncCounterNilMetrics(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.OpTotal, 1, metrics.Labels{"table": "t", "op": "get", "status": "success"})
	b.IncCounter(metrics.RowsTotal, 1, metrics.Labels{"outcome": "loaded"})
	b.ObserveHistogram(metrics.OpDurationSeconds, 1, metrics.Labels{})
}

// TestObserveHistogram verifies that ObserveHistogram records observations
// on the operation duration summary and ignores other names.
func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		metricName string
		value      float64
		wantCount  uint64
		wantSum    float64
	}{
		{name: "records duration", metricName: metrics.OpDurationSeconds, value: 1.5, wantCount: 1, wantSum: 1.5},
		{name: "ignores unknown metric name", metricName: "other_metric", value: 2.0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend("", "http://example.com")
			if err != nil {
				t.Fatalf("NewBackend() error = %v", err)
			}

			b.ObserveHistogram(tt.metricName, tt.value, metrics.Labels{"table": "user", "op": "save_insert", "status": "success"})

			gotCount, gotSum := readSummaryCountSum(t, b.opDuration, "user", "save_insert", "success")
			if gotCount != tt.wantCount {
				t.Fatalf("summary sample count = %d, want %d", gotCount, tt.wantCount)
			}
			if gotSum != tt.wantSum {
				t.Fatalf("summary sample sum = %v, want %v", gotSum, tt.wantSum)
			}
		})
	}
}

// TestFlush verifies that Flush pushes the registry to the configured
// Pushgateway URL.
func TestFlush(t *testing.T) {
	t.Parallel()

	type pushRequestInfo struct {
		method  string
		path    string
		bodyLen int
	}

	reqCh := make(chan pushRequestInfo, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)

		reqCh <- pushRequestInfo{
			method:  r.Method,
			path:    r.URL.Path,
			bodyLen: len(body),
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("recordmap-test", server.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	b.IncCounter(metrics.OpTotal, 1, metrics.Labels{"table": "user", "op": "get", "status": "success"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got pushRequestInfo
	select {
	case got = <-reqCh:
	default:
		t.Fatalf("Flush() did not result in any HTTP request to the Pushgateway")
	}

	if got.method != http.MethodPut {
		t.Fatalf("Push request method = %q, want PUT", got.method)
	}
	if got.path != "/metrics/job/recordmap-test" {
		t.Fatalf("Push request path = %q", got.path)
	}
	if got.bodyLen == 0 {
		t.Fatalf("Push request body length = 0, want > 0")
	}
}

// BenchmarkIncCounterOp measures the cost of incrementing the operation
// counter through the Backend abstraction.
func BenchmarkIncCounterOp(b *testing.B) {
	backend, err := NewBackend("", "http://example.com")
	if err != nil {
		b.Fatalf("NewBackend() error = %v", err)
	}

	labels := metrics.Labels{"table": "user", "op": "get", "status": "success"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		backend.IncCounter(metrics.OpTotal, 1, labels)
	}
}
