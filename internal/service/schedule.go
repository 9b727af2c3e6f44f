package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cronhook/cronhook/internal/core"
	"github.com/cronhook/cronhook/internal/data"
	"github.com/cronhook/cronhook/internal/domain/model"
	apperrors "github.com/cronhook/cronhook/internal/errors"
)

// ScheduleServiceOptions groups dependencies for ScheduleService.
type ScheduleServiceOptions struct {
	Repo    core.ScheduleRepository // Required: schedule repository
	Targets core.TargetRepository   // Required: target existence checks on create
	Clock   data.Clock              // Optional: defaults to the system clock
	Logger  *slog.Logger            // Optional: structured logger
}

// ScheduleService provides business logic for schedule lifecycle operations.
type ScheduleService struct {
	repo    core.ScheduleRepository
	targets core.TargetRepository
	clock   data.Clock
	logger  *slog.Logger
}

// NewScheduleService constructs a new ScheduleService.
func NewScheduleService(opts ScheduleServiceOptions) (*ScheduleService, error) {
	if opts.Repo == nil {
		return nil, errors.New("ScheduleRepository is required")
	}
	if opts.Targets == nil {
		return nil, errors.New("TargetRepository is required")
	}
	if opts.Clock == nil {
		opts.Clock = data.RealClock{}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "schedule_service")
	}

	return &ScheduleService{
		repo:    opts.Repo,
		targets: opts.Targets,
		clock:   opts.Clock,
		logger:  logger,
	}, nil
}

// MustNewScheduleService constructs a new ScheduleService and panics on error.
func MustNewScheduleService(opts ScheduleServiceOptions) *ScheduleService {
	svc, err := NewScheduleService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// Create validates the request, checks the target exists, and persists a new
// active schedule. Window schedules get expires_at = started_at + duration;
// the expiry is fixed at creation and does not move when the schedule is
// paused.
func (s *ScheduleService) Create(ctx context.Context, req model.CreateScheduleRequest) (*model.Schedule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.targets.GetByID(ctx, req.TargetID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("Target not found")
		}
		return nil, fmt.Errorf("check target: %w", err)
	}

	now := s.clock.Now()
	schedule := &model.Schedule{
		ID:                    uuid.NewString(),
		TargetID:              req.TargetID,
		ScheduleType:          req.ScheduleType,
		IntervalSeconds:       req.IntervalSeconds,
		DurationSeconds:       req.DurationSeconds,
		Status:                model.ScheduleStatusActive,
		StartedAt:             now,
		MaxRetries:            req.MaxRetries,
		RequestTimeoutSeconds: req.RequestTimeoutSeconds,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if req.ScheduleType == model.ScheduleTypeWindow && req.DurationSeconds != nil {
		expiresAt := now.Add(time.Duration(*req.DurationSeconds) * time.Second)
		schedule.ExpiresAt = &expiresAt
	}

	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "schedule created",
			"id", schedule.ID, "type", schedule.ScheduleType, "interval_seconds", schedule.IntervalSeconds)
	}
	return schedule, nil
}

// Get fetches a single schedule by ID.
func (s *ScheduleService) Get(ctx context.Context, id string) (*model.Schedule, error) {
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("Schedule not found")
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return schedule, nil
}

// List returns all schedules, newest first.
func (s *ScheduleService) List(ctx context.Context) ([]*model.Schedule, error) {
	schedules, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// Pause suspends dispatch for an active schedule. In-flight runs finish
// normally; only future admissions stop.
func (s *ScheduleService) Pause(ctx context.Context, id string) (*model.Schedule, error) {
	return s.transition(ctx, id,
		model.ScheduleStatusActive, model.ScheduleStatusPaused,
		"Only active schedules can be paused")
}

// Resume reactivates a paused schedule. The next run fires at the next due
// boundary derived from last_run_at; missed intervals are not backfilled.
func (s *ScheduleService) Resume(ctx context.Context, id string) (*model.Schedule, error) {
	return s.transition(ctx, id,
		model.ScheduleStatusPaused, model.ScheduleStatusActive,
		"Only paused schedules can be resumed")
}

func (s *ScheduleService) transition(ctx context.Context, id string, from, to model.ScheduleStatus, msg string) (*model.Schedule, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if schedule.Status != from {
		return nil, apperrors.InvalidTransition(msg)
	}

	// The write is conditional on the schedule still being in the source
	// state. Without the guard, the engine completing a window between the
	// read above and this write would be silently undone.
	now := s.clock.Now()
	found, err := s.repo.UpdateStatus(ctx, core.UpdateScheduleStatusParams{
		ID:     id,
		From:   from,
		Status: to,
		Now:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("update schedule status: %w", err)
	}
	if !found {
		// Lost a race: the schedule left the source state (or was deleted)
		// after the read. Re-read to report the right failure.
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, apperrors.InvalidTransition(msg)
	}

	schedule.Status = to
	schedule.UpdatedAt = now
	if s.logger != nil {
		s.logger.InfoContext(ctx, "schedule transitioned", "id", id, "status", to)
	}
	return schedule, nil
}

// Delete removes a schedule; its runs and attempts cascade.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if !found {
		return apperrors.NotFound("Schedule not found")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "schedule deleted", "id", id)
	}
	return nil
}
