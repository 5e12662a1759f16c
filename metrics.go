package qshadow

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	estimateRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qshadow_estimate_runs_total",
		Help: "Trace estimations by strategy and result",
	}, []string{"strategy", "result"})

	pairsEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qshadow_pairs_evaluated_total",
		Help: "Snapshot pairs evaluated by the trace estimator",
	})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "qshadow_batch_duration_seconds",
		Help:    "Time a worker spends on one batch of pairs",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	activeWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qshadow_active_workers",
		Help: "Workers currently alive across all pools",
	})
)

// Metrics holds the statistics of one pool.
type Metrics struct {
	mu               sync.RWMutex
	WorkerCount      int
	JobQueueSize     int
	BatchesScheduled int64
	BatchesCompleted int64
	BatchFailures    int64
	PairsEvaluated   int64
	TotalJobTime     time.Duration
	TotalQueueWait   time.Duration
	QueueWaits       int64

	AverageJobLatency time.Duration
	P95JobLatency     time.Duration

	latencies  []time.Duration
	windowSize int
}

func NewMetrics() *Metrics {
	return &Metrics{
		latencies:  make([]time.Duration, 0, 256),
		windowSize: 1000,
	}
}

func (m *Metrics) recordScheduled(queued int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchesScheduled++
	m.JobQueueSize = queued
}

// recordJobExecution accounts for one finished batch.
func (m *Metrics) recordJobExecution(duration time.Duration, pairs int64, success bool) {
	batchDuration.Observe(duration.Seconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	if !success {
		m.BatchFailures++
		return
	}

	m.BatchesCompleted++
	m.PairsEvaluated += pairs
	m.TotalJobTime += duration
	m.updateLatencies(duration)
	pairsEvaluated.Add(float64(pairs))
}

// recordQueueWait accounts for the time a batch sat queued before a worker
// picked it up.
func (m *Metrics) recordQueueWait(wait time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalQueueWait += wait
	m.QueueWaits++
}

func (m *Metrics) updateLatencies(duration time.Duration) {
	m.AverageJobLatency = m.TotalJobTime / time.Duration(m.BatchesCompleted)

	m.latencies = append(m.latencies, duration)
	if len(m.latencies) > m.windowSize {
		m.latencies = m.latencies[1:]
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	p95 := int(float64(len(sorted)) * 0.95)
	if p95 >= len(sorted) {
		p95 = len(sorted) - 1
	}
	m.P95JobLatency = sorted[p95]
}

func (m *Metrics) workerStarted() {
	activeWorkers.Inc()
	m.mu.Lock()
	m.WorkerCount++
	m.mu.Unlock()
}

func (m *Metrics) workerStopped() {
	activeWorkers.Dec()
	m.mu.Lock()
	m.WorkerCount--
	m.mu.Unlock()
}

// ExportMetrics returns a snapshot of the pool statistics.
func (m *Metrics) ExportMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var avgWait time.Duration
	if m.QueueWaits > 0 {
		avgWait = m.TotalQueueWait / time.Duration(m.QueueWaits)
	}

	return map[string]interface{}{
		"worker_count":      m.WorkerCount,
		"queue_size":        m.JobQueueSize,
		"batches_scheduled": m.BatchesScheduled,
		"batches_completed": m.BatchesCompleted,
		"batch_failures":    m.BatchFailures,
		"pairs_evaluated":   m.PairsEvaluated,
		"avg_latency":       m.AverageJobLatency.Microseconds(),
		"p95_latency":       m.P95JobLatency.Microseconds(),
		"queue_waits":       m.QueueWaits,
		"avg_queue_wait":    avgWait.Microseconds(),
	}
}
