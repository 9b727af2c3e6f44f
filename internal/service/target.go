// Package service contains the business logic behind the REST control plane:
// target and schedule CRUD, schedule lifecycle transitions, run queries, and
// metrics aggregation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cronhook/cronhook/internal/core"
	"github.com/cronhook/cronhook/internal/data"
	"github.com/cronhook/cronhook/internal/domain/model"
	apperrors "github.com/cronhook/cronhook/internal/errors"
)

// TargetServiceOptions groups dependencies for TargetService.
type TargetServiceOptions struct {
	Repo   core.TargetRepository // Required: target repository
	Clock  data.Clock            // Optional: defaults to the system clock
	Logger *slog.Logger          // Optional: structured logger
}

// TargetService provides business logic for target operations.
type TargetService struct {
	repo   core.TargetRepository
	clock  data.Clock
	logger *slog.Logger
}

// NewTargetService constructs a new TargetService.
func NewTargetService(opts TargetServiceOptions) (*TargetService, error) {
	if opts.Repo == nil {
		return nil, errors.New("TargetRepository is required")
	}
	if opts.Clock == nil {
		opts.Clock = data.RealClock{}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "target_service")
	}

	return &TargetService{
		repo:   opts.Repo,
		clock:  opts.Clock,
		logger: logger,
	}, nil
}

// MustNewTargetService constructs a new TargetService and panics on error.
func MustNewTargetService(opts TargetServiceOptions) *TargetService {
	svc, err := NewTargetService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// Create registers a new HTTP target.
func (s *TargetService) Create(ctx context.Context, req model.CreateTargetRequest) (*model.Target, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	headers := req.Headers
	if headers == nil {
		headers = map[string]string{}
	}
	target := &model.Target{
		ID:           uuid.NewString(),
		Name:         req.Name,
		URL:          req.URL,
		Method:       req.Method,
		Headers:      headers,
		BodyTemplate: req.BodyTemplate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, target); err != nil {
		return nil, fmt.Errorf("create target: %w", err)
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "target created", "id", target.ID, "url", target.URL)
	}
	return target, nil
}

// Get fetches a single target by ID.
func (s *TargetService) Get(ctx context.Context, id string) (*model.Target, error) {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("Target not found")
		}
		return nil, fmt.Errorf("get target: %w", err)
	}
	return target, nil
}

// List returns all targets, newest first.
func (s *TargetService) List(ctx context.Context) ([]*model.Target, error) {
	targets, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	return targets, nil
}

// Update applies a partial update to an existing target. Omitted fields
// keep their current value.
func (s *TargetService) Update(ctx context.Context, id string, req model.UpdateTargetRequest) (*model.Target, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	target, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(target)
	target.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, target); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("Target not found")
		}
		return nil, fmt.Errorf("update target: %w", err)
	}
	return target, nil
}

// Delete removes a target; its schedules, runs, and attempts cascade.
func (s *TargetService) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete target: %w", err)
	}
	if !found {
		return apperrors.NotFound("Target not found")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "target deleted", "id", id)
	}
	return nil
}
