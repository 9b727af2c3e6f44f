package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cronhook/cronhook/internal/domain/model"
	apperrors "github.com/cronhook/cronhook/internal/errors"
)

func TestRunServiceListValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("defaults limit to 100", func(t *testing.T) {
		runs, err := f.runs.List(ctx, model.RunListOptions{})
		require.NoError(t, err)
		assert.Empty(t, runs)
	})

	t.Run("limit out of range", func(t *testing.T) {
		_, err := f.runs.List(ctx, model.RunListOptions{Limit: 1001})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))

		_, err = f.runs.List(ctx, model.RunListOptions{Limit: -5})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("negative offset", func(t *testing.T) {
		_, err := f.runs.List(ctx, model.RunListOptions{Offset: -1})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("bad status", func(t *testing.T) {
		_, err := f.runs.List(ctx, model.RunListOptions{Status: model.RunStatus("bogus")})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestRunServiceGetNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.runs.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "Run not found", appErrMessage(t, err))
}

func TestMetricsServiceSnapshot(t *testing.T) {
	f := newFixture(t)
	target := f.createTarget(t)
	f.createSchedule(t, target.ID)

	snapshot, err := f.metrics.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.TotalSchedules)
	assert.Equal(t, 1, snapshot.ActiveSchedules)
	assert.Zero(t, snapshot.TotalRuns)
	require.Len(t, snapshot.Schedules, 1)
	assert.Nil(t, snapshot.Schedules[0].LastRunAt)
}
