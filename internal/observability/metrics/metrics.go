// Package metrics exposes prometheus collectors for the scheduler engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ticks counts scheduler tick iterations by result.
	Ticks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cronhook_engine_ticks_total",
		Help: "Total number of scheduler tick iterations",
	}, []string{"result"})

	// RunsDispatched counts run executors spawned by the tick loop.
	RunsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cronhook_runs_dispatched_total",
		Help: "Total number of run executions dispatched",
	})

	// RunsCompleted counts finished runs by terminal status.
	RunsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cronhook_runs_completed_total",
		Help: "Total number of runs finished, by terminal status",
	}, []string{"status"})

	// AttemptLatency tracks outbound request latency by outcome class.
	AttemptLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cronhook_attempt_latency_seconds",
		Help:    "Outbound HTTP attempt latency distribution",
		Buckets: prometheus.DefBuckets,
	}, []string{"error_type"})

	// InFlight tracks the number of schedules currently executing.
	InFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cronhook_executions_in_flight",
		Help: "Current number of schedules with an execution in flight",
	})

	// OrphansRecovered counts runs corrected by the startup orphan sweep.
	OrphansRecovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cronhook_orphan_runs_recovered_total",
		Help: "Total number of pending runs failed by the startup sweep",
	})

	// WindowsCompleted counts window schedules auto-completed at expiry.
	WindowsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cronhook_windows_completed_total",
		Help: "Total number of window schedules transitioned to completed",
	})
)

// Tick result label values.
const (
	TickOK    = "ok"
	TickError = "error"
)
