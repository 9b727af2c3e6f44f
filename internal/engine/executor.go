package engine

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cronhook/cronhook/internal/core"
	"github.com/cronhook/cronhook/internal/data"
	"github.com/cronhook/cronhook/internal/dispatch"
	"github.com/cronhook/cronhook/internal/domain/model"
	apperrors "github.com/cronhook/cronhook/internal/errors"
	"github.com/cronhook/cronhook/internal/observability/metrics"
)

// Executor runs a single admitted schedule: it opens a run, fires attempts
// until one succeeds or retries are exhausted, and finalizes the run.
type Executor struct {
	targets    core.TargetRepository
	schedules  core.ScheduleRepository
	runs       core.RunRepository
	dispatcher *dispatch.Dispatcher
	clock      data.Clock
	logger     *slog.Logger
}

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	Targets    core.TargetRepository
	Schedules  core.ScheduleRepository
	Runs       core.RunRepository
	Dispatcher *dispatch.Dispatcher
	Clock      data.Clock
	Logger     *slog.Logger
}

// NewExecutor creates an Executor from the given options.
func NewExecutor(opts ExecutorOptions) *Executor {
	if opts.Clock == nil {
		opts.Clock = data.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Executor{
		targets:    opts.Targets,
		schedules:  opts.Schedules,
		runs:       opts.Runs,
		dispatcher: opts.Dispatcher,
		clock:      opts.Clock,
		logger:     opts.Logger,
	}
}

// Execute performs one full run for the schedule. The pending run and the
// schedule's last_run_at advance are written in one transaction before the
// first attempt fires. Errors are logged, never returned: one bad schedule
// must not disturb the engine.
func (e *Executor) Execute(ctx context.Context, schedule *model.Schedule) {
	logger := e.logger.With("schedule_id", schedule.ID)

	// Database writes survive a hard cancel so an interrupted run can still
	// be closed instead of lingering pending until the next startup sweep.
	dbCtx := context.WithoutCancel(ctx)

	run, err := e.schedules.OpenRun(dbCtx, core.OpenRunParams{
		ScheduleID: schedule.ID,
		RunID:      uuid.NewString(),
		Now:        e.clock.Now(),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to open run", "err", err)
		return
	}
	logger = logger.With("run_id", run.ID)

	status := e.runAttempts(ctx, schedule, run, logger)

	if err := e.runs.Finalize(dbCtx, core.FinalizeRunParams{
		RunID:       run.ID,
		Status:      status,
		CompletedAt: e.clock.Now(),
	}); err != nil {
		// Left pending; the next startup sweep corrects it.
		logger.ErrorContext(ctx, "failed to finalize run", "err", err)
		return
	}
	metrics.RunsCompleted.WithLabelValues(string(status)).Inc()
	logger.InfoContext(ctx, "run finished", "status", status)
}

// runAttempts fires up to 1+max_retries attempts and returns the terminal
// run status. Each attempt reads the target fresh, so a target update
// mid-run affects subsequent attempts.
func (e *Executor) runAttempts(ctx context.Context, schedule *model.Schedule, run *model.Run, logger *slog.Logger) model.RunStatus {
	dbCtx := context.WithoutCancel(ctx)
	maxAttempts := schedule.MaxRetries + 1

	for attemptNum := 1; attemptNum <= maxAttempts; attemptNum++ {
		target, err := e.targets.GetByID(dbCtx, schedule.TargetID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				logger.WarnContext(ctx, "target missing, failing run")
				e.appendSynthetic(dbCtx, run.ID, attemptNum, "target missing", logger)
				return model.RunStatusFailed
			}
			logger.ErrorContext(ctx, "failed to load target", "err", err)
			e.appendSynthetic(dbCtx, run.ID, attemptNum, truncated(err.Error()), logger)
			return model.RunStatusFailed
		}

		outcome := e.dispatcher.Dispatch(ctx, dispatch.Request{
			URL:     target.URL,
			Method:  target.Method,
			Headers: target.Headers,
			Body:    target.BodyTemplate,
			Timeout: schedule.RequestTimeout(),
		})
		if ctx.Err() != nil {
			// Hard shutdown cancelled the outbound request.
			e.appendSynthetic(dbCtx, run.ID, attemptNum, "canceled", logger)
			return model.RunStatusFailed
		}

		attempt := attemptFromOutcome(run.ID, attemptNum, outcome)
		if err := e.runs.AppendAttempt(dbCtx, attempt); err != nil {
			logger.ErrorContext(ctx, "failed to record attempt", "err", err)
			return model.RunStatusFailed
		}
		observeAttempt(outcome)

		if outcome.Succeeded() {
			return model.RunStatusSuccess
		}
	}
	return model.RunStatusFailed
}

// appendSynthetic records an attempt that never reached the network, with
// error type unknown and the given message.
func (e *Executor) appendSynthetic(ctx context.Context, runID string, attemptNum int, msg string, logger *slog.Logger) {
	now := e.clock.Now()
	errType := model.ErrorTypeUnknown
	attempt := &model.Attempt{
		ID:            uuid.NewString(),
		RunID:         runID,
		AttemptNumber: attemptNum,
		ErrorType:     &errType,
		ErrorMessage:  &msg,
		StartedAt:     now,
		CompletedAt:   &now,
		CreatedAt:     now,
	}
	if err := e.runs.AppendAttempt(ctx, attempt); err != nil {
		logger.ErrorContext(ctx, "failed to record synthetic attempt", "err", err)
	}
}

func attemptFromOutcome(runID string, attemptNum int, outcome dispatch.Outcome) *model.Attempt {
	completedAt := outcome.CompletedAt
	return &model.Attempt{
		ID:                uuid.NewString(),
		RunID:             runID,
		AttemptNumber:     attemptNum,
		StatusCode:        outcome.StatusCode,
		LatencyMS:         outcome.LatencyMS,
		ResponseSizeBytes: outcome.ResponseSizeBytes,
		ErrorType:         outcome.ErrorType,
		ErrorMessage:      outcome.ErrorMessage,
		StartedAt:         outcome.StartedAt,
		CompletedAt:       &completedAt,
		CreatedAt:         outcome.StartedAt,
	}
}

func observeAttempt(outcome dispatch.Outcome) {
	label := "none"
	if outcome.ErrorType != nil {
		label = string(*outcome.ErrorType)
	}
	metrics.AttemptLatency.WithLabelValues(label).Observe(outcome.LatencyMS / 1000)
}

func truncated(msg string) string {
	const max = 500
	if len(msg) > max {
		return msg[:max]
	}
	return msg
}
