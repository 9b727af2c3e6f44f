package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cronhook/cronhook/internal/core"
	"github.com/cronhook/cronhook/internal/domain/model"
)

// MetricsServiceOptions groups dependencies for MetricsService.
type MetricsServiceOptions struct {
	Repo core.MetricsRepository // Required: metrics repository
}

// MetricsService builds aggregate run metrics for the control plane.
type MetricsService struct {
	repo core.MetricsRepository
}

// NewMetricsService constructs a new MetricsService.
func NewMetricsService(opts MetricsServiceOptions) (*MetricsService, error) {
	if opts.Repo == nil {
		return nil, errors.New("MetricsRepository is required")
	}
	return &MetricsService{repo: opts.Repo}, nil
}

// MustNewMetricsService constructs a new MetricsService and panics on error.
func MustNewMetricsService(opts MetricsServiceOptions) *MetricsService {
	svc, err := NewMetricsService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// Snapshot returns global and per-schedule run statistics.
func (s *MetricsService) Snapshot(ctx context.Context) (*model.MetricsSnapshot, error) {
	snapshot, err := s.repo.Aggregate(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate metrics: %w", err)
	}
	return snapshot, nil
}
