// ============================================================================
// treetask Metrics - Prometheus Monitoring
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Purpose: Collect and expose scheduler metrics for Prometheus monitoring
//
// Monitoring Philosophy:
//   Based on RED (Rate, Errors, Duration) and USE (Utilization, Saturation,
//   Errors), adapted to a task tree instead of a job queue: every Task
//   submission, completion outcome and closure duration is labeled by its
//   weight class so a single dashboard shows whether one class is starving
//   another under overload.
//
// Metric Categories:
//
//   1. Task Counters (CounterVec by weight) - cumulative, monotonic:
//      - treetask_tasks_started_total
//      - treetask_tasks_succeeded_total
//      - treetask_tasks_interrupted_total
//      - treetask_tasks_panicked_total
//
//   2. Closure Duration (HistogramVec by weight) - distribution stats:
//      - treetask_task_duration_seconds
//
//   3. Status Gauges (GaugeVec by weight / plain Gauge):
//      - treetask_active_workers: workers currently executing that weight
//      - treetask_mutex_waiters: tasks currently queued behind a Mutex
//
// HTTP Endpoint:
//   Exposed via /metrics, scraped by Prometheus. Default port 9090.
//
// ============================================================================

package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects Prometheus metrics for one Service and any number of
// Mutex instances built on top of it.
type Collector struct {
	tasksStarted      *prometheus.CounterVec
	tasksSucceeded    *prometheus.CounterVec
	tasksInterrupted  *prometheus.CounterVec
	tasksPanicked     *prometheus.CounterVec
	taskDuration      *prometheus.HistogramVec
	activeWorkers     *prometheus.GaugeVec
	mutexWaiters      prometheus.Gauge
}

// NewCollector creates and registers a Collector against the default
// Prometheus registry.
func NewCollector() *Collector {
	c := &Collector{
		tasksStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "treetask_tasks_started_total",
			Help: "Total number of tasks started, by weight class",
		}, []string{"weight"}),
		tasksSucceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "treetask_tasks_succeeded_total",
			Help: "Total number of tasks that ran to completion without interruption, by weight class",
		}, []string{"weight"}),
		tasksInterrupted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "treetask_tasks_interrupted_total",
			Help: "Total number of tasks that finalized as interrupted, by weight class",
		}, []string{"weight"}),
		tasksPanicked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "treetask_tasks_panicked_total",
			Help: "Total number of task closures recovered from a panic, by weight class",
		}, []string{"weight"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "treetask_task_duration_seconds",
			Help:    "Task closure execution duration in seconds, by weight class",
			Buckets: prometheus.DefBuckets,
		}, []string{"weight"}),
		activeWorkers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "treetask_active_workers",
			Help: "Workers currently executing a task of this weight class",
		}, []string{"weight"}),
		mutexWaiters: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "treetask_mutex_waiters",
			Help: "Tasks queued behind the Mutex that most recently reported its wait queue",
		}),
	}

	prometheus.MustRegister(
		c.tasksStarted,
		c.tasksSucceeded,
		c.tasksInterrupted,
		c.tasksPanicked,
		c.taskDuration,
		c.activeWorkers,
		c.mutexWaiters,
	)

	return c
}

// RecordStarted records a task beginning its closure.
func (c *Collector) RecordStarted(weight string) {
	c.tasksStarted.WithLabelValues(weight).Inc()
}

// RecordSucceeded records a task finalizing without ever being interrupted.
func (c *Collector) RecordSucceeded(weight string) {
	c.tasksSucceeded.WithLabelValues(weight).Inc()
}

// RecordInterrupted records a task finalizing as interrupted.
func (c *Collector) RecordInterrupted(weight string) {
	c.tasksInterrupted.WithLabelValues(weight).Inc()
}

// RecordPanic records a recovered closure panic.
func (c *Collector) RecordPanic(weight string) {
	c.tasksPanicked.WithLabelValues(weight).Inc()
}

// ObserveDuration records how long a task's closure took to run.
func (c *Collector) ObserveDuration(weight string, d time.Duration) {
	c.taskDuration.WithLabelValues(weight).Observe(d.Seconds())
}

// SetActiveWorkers sets the current count of workers executing tasks of
// the given weight class.
func (c *Collector) SetActiveWorkers(weight string, n int) {
	c.activeWorkers.WithLabelValues(weight).Set(float64(n))
}

// SetMutexWaiters sets the current count of tasks queued behind a Mutex.
func (c *Collector) SetMutexWaiters(n int) {
	c.mutexWaiters.Set(float64(n))
}

// StartServer starts the Prometheus metrics HTTP server. It blocks until
// the server stops or fails; callers typically run it in its own
// goroutine.
func StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	return http.ListenAndServe(addr, mux)
}
