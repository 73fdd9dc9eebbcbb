// Package metrics holds the Prometheus collectors describing scan work.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "dirviz"
	subsystem = "scan"
)

// Metrics groups the collectors updated by the worker pool and the tree builder.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Registry is the registry every collector below is registered with.
	Registry *prometheus.Registry

	DirsScanned   prometheus.Counter
	FilesScanned  prometheus.Counter
	BytesScanned  prometheus.Counter
	SkippedErrors *prometheus.CounterVec
	TasksQueued   prometheus.Gauge
	WorkersActive prometheus.Gauge
}

// New creates a fresh set of collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		DirsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "directories_total",
			Help:      "The total number of directories given a shallow stat pass.",
		}),
		FilesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "files_total",
			Help:      "The total number of non-directory entries counted.",
		}),
		BytesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bytes_total",
			Help:      "The total number of bytes counted.",
		}),
		SkippedErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "skipped_errors_total",
			Help:      "The total number of entries skipped because they were inaccessible.",
		}, []string{"stage"}),
		TasksQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_queued",
			Help:      "The current number of directories waiting for a worker.",
		}),
		WorkersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workers_active",
			Help:      "The current number of running scan workers.",
		}),
	}

	m.Registry.MustRegister(
		m.DirsScanned,
		m.FilesScanned,
		m.BytesScanned,
		m.SkippedErrors,
		m.TasksQueued,
		m.WorkersActive,
	)

	return m
}

// Stages used as the "stage" label of SkippedErrors.
const (
	StageList = "list"
	StageStat = "stat"
	StageWalk = "walk"
)

// ObserveDir records one finished shallow scan.
func (m *Metrics) ObserveDir(files, bytes int64) {
	if m == nil {
		return
	}

	m.DirsScanned.Inc()
	m.FilesScanned.Add(float64(files))
	m.BytesScanned.Add(float64(bytes))
}

// ObserveSkip records an inaccessible entry skipped at the given stage.
func (m *Metrics) ObserveSkip(stage string) {
	if m == nil {
		return
	}

	m.SkippedErrors.WithLabelValues(stage).Inc()
}

// SetQueued reports the current task backlog.
func (m *Metrics) SetQueued(n int) {
	if m == nil {
		return
	}

	m.TasksQueued.Set(float64(n))
}

// WorkerStarted and WorkerStopped track the number of live workers.
func (m *Metrics) WorkerStarted() {
	if m == nil {
		return
	}

	m.WorkersActive.Inc()
}

func (m *Metrics) WorkerStopped() {
	if m == nil {
		return
	}

	m.WorkersActive.Dec()
}
