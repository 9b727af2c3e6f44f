package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cronhook/cronhook/internal/core"
	"github.com/cronhook/cronhook/internal/domain/model"
	apperrors "github.com/cronhook/cronhook/internal/errors"
)

const (
	defaultRunListLimit = 100
	maxRunListLimit     = 1000
)

// RunServiceOptions groups dependencies for RunService.
type RunServiceOptions struct {
	Repo   core.RunRepository // Required: run repository
	Logger *slog.Logger       // Optional: structured logger
}

// RunService provides read access to run and attempt history.
type RunService struct {
	repo   core.RunRepository
	logger *slog.Logger
}

// NewRunService constructs a new RunService.
func NewRunService(opts RunServiceOptions) (*RunService, error) {
	if opts.Repo == nil {
		return nil, errors.New("RunRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "run_service")
	}

	return &RunService{repo: opts.Repo, logger: logger}, nil
}

// MustNewRunService constructs a new RunService and panics on error.
func MustNewRunService(opts RunServiceOptions) *RunService {
	svc, err := NewRunService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// List returns runs matching the given filters, newest first. Limit is
// clamped to [1, 1000] with a default of 100; a negative offset is rejected.
func (s *RunService) List(ctx context.Context, opts model.RunListOptions) ([]*model.Run, error) {
	if opts.Limit == 0 {
		opts.Limit = defaultRunListLimit
	}
	if opts.Limit < 1 || opts.Limit > maxRunListLimit {
		return nil, apperrors.ValidationField("limit", "limit must be between 1 and 1000")
	}
	if opts.Offset < 0 {
		return nil, apperrors.ValidationField("offset", "offset must be >= 0")
	}
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, apperrors.ValidationField("status", "status must be pending, success, or failed")
	}

	runs, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Get fetches a run with its full attempt history.
func (s *RunService) Get(ctx context.Context, id string) (*model.RunDetail, error) {
	detail, err := s.repo.GetWithAttempts(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NotFound("Run not found")
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return detail, nil
}
