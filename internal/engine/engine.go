package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cronhook/cronhook/internal/core"
	"github.com/cronhook/cronhook/internal/data"
	"github.com/cronhook/cronhook/internal/domain/model"
	"github.com/cronhook/cronhook/internal/observability/metrics"
)

// Engine is the polling scheduler. Every tick it loads the active schedules,
// completes expired windows, and spawns an executor for each due schedule
// admitted to the registry.
type Engine struct {
	schedules core.ScheduleRepository
	runs      core.RunRepository
	executor  *Executor
	registry  *Registry
	clock     data.Clock
	logger    *slog.Logger

	pollInterval  time.Duration
	shutdownGrace time.Duration

	wg sync.WaitGroup
}

// Options configures an Engine.
type Options struct {
	Schedules core.ScheduleRepository
	Runs      core.RunRepository
	Executor  *Executor
	Registry  *Registry
	Clock     data.Clock
	Logger    *slog.Logger

	PollInterval  time.Duration
	ShutdownGrace time.Duration
}

// New creates an Engine from the given options, filling in defaults.
func New(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = data.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.ShutdownGrace <= 0 {
		opts.ShutdownGrace = 5 * time.Second
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry(0)
	}
	return &Engine{
		schedules:     opts.Schedules,
		runs:          opts.Runs,
		executor:      opts.Executor,
		registry:      opts.Registry,
		clock:         opts.Clock,
		logger:        opts.Logger.With("component", "engine"),
		pollInterval:  opts.PollInterval,
		shutdownGrace: opts.ShutdownGrace,
	}
}

// Run sweeps orphaned runs, then ticks until ctx is cancelled. On shutdown
// it waits up to the grace period for in-flight executions, then hard-cancels
// their outbound requests. Run only returns an error when the startup sweep
// fails; tick errors are logged and swallowed.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.sweepOrphans(ctx); err != nil {
		return err
	}

	// Executors get their own cancellation so the engine can keep them
	// alive through the grace period after the tick loop stops.
	execCtx, cancelExec := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelExec()

	e.logger.InfoContext(ctx, "scheduler engine starting", "poll_interval", e.pollInterval)
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	// Tick once immediately so freshly started processes do not wait a
	// full poll interval before dispatching.
	for {
		if err := e.tick(ctx, execCtx); err != nil {
			metrics.Ticks.WithLabelValues(metrics.TickError).Inc()
			e.logger.ErrorContext(ctx, "tick failed", "err", err)
		} else {
			metrics.Ticks.WithLabelValues(metrics.TickOK).Inc()
		}

		select {
		case <-ctx.Done():
			e.shutdown(cancelExec)
			return nil
		case <-ticker.C:
		}
	}
}

// tick runs a single scheduler iteration.
func (e *Engine) tick(ctx, execCtx context.Context) error {
	now := e.clock.Now()

	active, err := e.schedules.ListActive(ctx)
	if err != nil {
		return err
	}

	for _, schedule := range active {
		if schedule.Expired(now) {
			e.completeWindow(ctx, schedule, now)
			continue
		}
		if !schedule.Due(now) {
			continue
		}
		if !e.registry.TryAdmit(schedule.ID) {
			continue
		}
		e.spawn(execCtx, schedule)
	}
	return nil
}

// completeWindow transitions an expired window schedule to completed. The
// transition is idempotent; a schedule deleted in between is simply gone.
func (e *Engine) completeWindow(ctx context.Context, schedule *model.Schedule, now time.Time) {
	found, err := e.schedules.UpdateStatus(ctx, core.UpdateScheduleStatusParams{
		ID:     schedule.ID,
		From:   model.ScheduleStatusActive,
		Status: model.ScheduleStatusCompleted,
		Now:    now,
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to complete window schedule",
			"schedule_id", schedule.ID, "err", err)
		return
	}
	if found {
		metrics.WindowsCompleted.Inc()
		e.logger.InfoContext(ctx, "window schedule completed", "schedule_id", schedule.ID)
	}
}

func (e *Engine) spawn(execCtx context.Context, schedule *model.Schedule) {
	metrics.RunsDispatched.Inc()
	metrics.InFlight.Set(float64(e.registry.Len()))
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() {
			e.registry.Release(schedule.ID)
			metrics.InFlight.Set(float64(e.registry.Len()))
		}()
		e.executor.Execute(execCtx, schedule)
	}()
}

// sweepOrphans fails runs left pending by an unclean shutdown.
func (e *Engine) sweepOrphans(ctx context.Context) error {
	count, err := e.runs.MarkOrphans(ctx, e.clock.Now())
	if err != nil {
		return err
	}
	if count > 0 {
		metrics.OrphansRecovered.Add(float64(count))
		e.logger.InfoContext(ctx, "recovered orphaned runs", "count", count)
	}
	return nil
}

// shutdown waits up to the grace period for in-flight executions, then
// cancels their outbound requests and waits for them to record the
// interruption.
func (e *Engine) shutdown(cancelExec context.CancelFunc) {
	e.logger.Info("scheduler engine stopping", "in_flight", e.registry.Len())

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(e.shutdownGrace):
		e.logger.Warn("shutdown grace elapsed, cancelling in-flight executions",
			"in_flight", e.registry.Len())
		cancelExec()
		<-done
	}
	e.logger.Info("scheduler engine stopped")
}
