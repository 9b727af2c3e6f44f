package core

import (
	"context"
	"time"

	"github.com/cronhook/cronhook/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service/engine layers and the data
// layer. Service implementations should depend on these interfaces, not concrete
// implementations.

// TargetRepository defines the interface for target data operations.
type TargetRepository interface {
	Create(ctx context.Context, target *model.Target) error
	GetByID(ctx context.Context, id string) (*model.Target, error)
	List(ctx context.Context) ([]*model.Target, error)
	Update(ctx context.Context, target *model.Target) error
	// Delete removes a target; schedules, runs, and attempts cascade.
	Delete(ctx context.Context, id string) (bool, error)
}

// UpdateScheduleStatusParams groups parameters for ScheduleRepository.UpdateStatus.
// From, when non-empty, makes the update conditional: it only applies while
// the schedule is still in that state.
type UpdateScheduleStatusParams struct {
	ID     string
	From   model.ScheduleStatus
	Status model.ScheduleStatus
	Now    time.Time
}

// OpenRunParams groups parameters for ScheduleRepository.OpenRun.
type OpenRunParams struct {
	ScheduleID string
	RunID      string
	Now        time.Time
}

// ScheduleRepository defines the interface for schedule data operations.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	List(ctx context.Context) ([]*model.Schedule, error)
	ListActive(ctx context.Context) ([]*model.Schedule, error)
	UpdateStatus(ctx context.Context, params UpdateScheduleStatusParams) (bool, error)
	// Delete removes a schedule; runs and attempts cascade.
	Delete(ctx context.Context, id string) (bool, error)
	// OpenRun inserts a pending run and advances the schedule's last_run_at
	// in a single transaction.
	OpenRun(ctx context.Context, params OpenRunParams) (*model.Run, error)
}

// FinalizeRunParams groups parameters for RunRepository.Finalize.
type FinalizeRunParams struct {
	RunID       string
	Status      model.RunStatus
	CompletedAt time.Time
}

// RunRepository defines the interface for run and attempt data operations.
type RunRepository interface {
	GetWithAttempts(ctx context.Context, id string) (*model.RunDetail, error)
	List(ctx context.Context, opts model.RunListOptions) ([]*model.Run, error)
	Finalize(ctx context.Context, params FinalizeRunParams) error
	AppendAttempt(ctx context.Context, attempt *model.Attempt) error
	// MarkOrphans rewrites runs left pending by an unclean shutdown as
	// failed/unknown/"interrupted". Returns the number of runs corrected.
	MarkOrphans(ctx context.Context, now time.Time) (int, error)
}

// MetricsRepository defines the interface for metrics aggregation.
type MetricsRepository interface {
	Aggregate(ctx context.Context) (*model.MetricsSnapshot, error)
}
