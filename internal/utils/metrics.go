package utils

import (
	"io"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Tracks request counts and latencies of outbound datastore and AI calls
type MetricsCollector struct {
	mu           sync.RWMutex
	requestCount uint64
	errorCount   uint64

	// Maps operation name to list of latencies in nanoseconds
	operationTimes map[string][]int64

	systemStartTime time.Time

	// Prometheus view of the same observations
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// OperationStats summarizes the latencies recorded for one operation.
type OperationStats struct {
	Operation      string        `json:"operation"`
	Calls          int           `json:"calls"`
	AverageLatency time.Duration `json:"average_latency"`
	MaxLatency     time.Duration `json:"max_latency"`
}

// MetricsSnapshot is a point-in-time copy of the collector.
type MetricsSnapshot struct {
	Requests   uint64           `json:"requests"`
	Errors     uint64           `json:"errors"`
	Uptime     time.Duration    `json:"uptime"`
	Operations []OperationStats `json:"operations"`
}

func NewMetricsCollector() *MetricsCollector {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stackit",
		Name:      "client_requests_total",
		Help:      "Outbound datastore and AI calls by operation and result.",
	}, []string{"operation", "result"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stackit",
		Name:      "client_request_duration_seconds",
		Help:      "Latency of outbound datastore and AI calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(calls, latency)

	return &MetricsCollector{
		operationTimes:  make(map[string][]int64),
		systemStartTime: time.Now(),
		registry:        registry,
		calls:           calls,
		latency:         latency,
	}
}

func (mc *MetricsCollector) IncrementRequests() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.requestCount++
}

func (mc *MetricsCollector) IncrementErrors() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.errorCount++
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.operationTimes[operationName] = append(
		mc.operationTimes[operationName],
		duration.Nanoseconds(),
	)
}

// Observe records one finished call: the request, its latency and whether it failed.
// A nil collector is a no-op so clients can run without metrics.
func (mc *MetricsCollector) Observe(operationName string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	mc.ObserveResult(operationName, start, result, err)
}

// ObserveResult is Observe with an explicit result label, for calls that end in
// more ways than ok and error. A non-nil err counts as an error.
func (mc *MetricsCollector) ObserveResult(operationName string, start time.Time, result string, err error) {
	if mc == nil {
		return
	}
	elapsed := time.Since(start)

	mc.IncrementRequests()
	if err != nil {
		mc.IncrementErrors()
	}
	mc.AddOperationLatency(operationName, elapsed)

	mc.calls.WithLabelValues(operationName, result).Inc()
	mc.latency.WithLabelValues(operationName).Observe(elapsed.Seconds())
}

// Registry exposes the Prometheus registry holding the collector's series.
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// WritePrometheus writes every series in the Prometheus text exposition format.
func (mc *MetricsCollector) WritePrometheus(w io.Writer) error {
	families, err := mc.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns the totals and per-operation latencies, sorted by operation name.
func (mc *MetricsCollector) Snapshot() MetricsSnapshot {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	snap := MetricsSnapshot{
		Requests:   mc.requestCount,
		Errors:     mc.errorCount,
		Uptime:     time.Since(mc.systemStartTime),
		Operations: make([]OperationStats, 0, len(mc.operationTimes)),
	}

	for name, latencies := range mc.operationTimes {
		var total, maxLatency int64
		for _, l := range latencies {
			total += l
			if l > maxLatency {
				maxLatency = l
			}
		}
		stats := OperationStats{
			Operation:  name,
			Calls:      len(latencies),
			MaxLatency: time.Duration(maxLatency),
		}
		if len(latencies) > 0 {
			stats.AverageLatency = time.Duration(total / int64(len(latencies)))
		}
		snap.Operations = append(snap.Operations, stats)
	}

	sort.Slice(snap.Operations, func(i, j int) bool {
		return snap.Operations[i].Operation < snap.Operations[j].Operation
	})
	return snap
}
