package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cronhook/cronhook/internal/core"
	"github.com/cronhook/cronhook/internal/data"
	"github.com/cronhook/cronhook/internal/domain/model"
	apperrors "github.com/cronhook/cronhook/internal/errors"
)

func appErrMessage(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	return appErr.Message
}

func TestScheduleServiceCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.createTarget(t)

	t.Run("interval schedule starts active", func(t *testing.T) {
		schedule, err := f.schedules.Create(ctx, model.CreateScheduleRequest{
			TargetID:        target.ID,
			ScheduleType:    model.ScheduleTypeInterval,
			IntervalSeconds: 5,
		})
		require.NoError(t, err)
		assert.Equal(t, model.ScheduleStatusActive, schedule.Status)
		assert.Equal(t, 30, schedule.RequestTimeoutSeconds)
		assert.Nil(t, schedule.ExpiresAt)
		assert.True(t, f.clock.Now().Equal(schedule.StartedAt))
	})

	t.Run("window schedule gets fixed expiry", func(t *testing.T) {
		duration := 60
		schedule, err := f.schedules.Create(ctx, model.CreateScheduleRequest{
			TargetID:        target.ID,
			ScheduleType:    model.ScheduleTypeWindow,
			IntervalSeconds: 5,
			DurationSeconds: &duration,
		})
		require.NoError(t, err)
		require.NotNil(t, schedule.ExpiresAt)
		assert.True(t, f.clock.Now().Add(time.Minute).Equal(*schedule.ExpiresAt))
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := f.schedules.Create(ctx, model.CreateScheduleRequest{
			TargetID:        "nope",
			ScheduleType:    model.ScheduleTypeInterval,
			IntervalSeconds: 5,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
		assert.Equal(t, "Target not found", appErrMessage(t, err))
	})

	t.Run("invalid request", func(t *testing.T) {
		_, err := f.schedules.Create(ctx, model.CreateScheduleRequest{
			TargetID:        target.ID,
			ScheduleType:    model.ScheduleTypeInterval,
			IntervalSeconds: 0,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestScheduleServicePauseResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.createTarget(t)
	schedule := f.createSchedule(t, target.ID)

	paused, err := f.schedules.Pause(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleStatusPaused, paused.Status)

	t.Run("pausing a paused schedule is rejected", func(t *testing.T) {
		_, err := f.schedules.Pause(ctx, schedule.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidTransition(err))
		assert.Equal(t, "Only active schedules can be paused", appErrMessage(t, err))
	})

	resumed, err := f.schedules.Resume(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleStatusActive, resumed.Status)

	t.Run("resuming an active schedule is rejected", func(t *testing.T) {
		_, err := f.schedules.Resume(ctx, schedule.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsInvalidTransition(err))
		assert.Equal(t, "Only paused schedules can be resumed", appErrMessage(t, err))
	})

	t.Run("unknown schedule", func(t *testing.T) {
		_, err := f.schedules.Pause(ctx, "nope")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
		assert.Equal(t, "Schedule not found", appErrMessage(t, err))
	})
}

// completingScheduleRepo finishes the schedule right after every read,
// simulating the engine completing an expired window between the service's
// read and its status write.
type completingScheduleRepo struct {
	core.ScheduleRepository
	clock data.Clock
}

func (r *completingScheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	schedule, err := r.ScheduleRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if schedule.Status == model.ScheduleStatusActive {
		if _, err := r.ScheduleRepository.UpdateStatus(ctx, core.UpdateScheduleStatusParams{
			ID:     id,
			From:   model.ScheduleStatusActive,
			Status: model.ScheduleStatusCompleted,
			Now:    r.clock.Now(),
		}); err != nil {
			return nil, err
		}
	}
	return schedule, nil
}

func TestScheduleServicePauseLosesRaceWithCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.createTarget(t)
	schedule := f.createSchedule(t, target.ID)

	svc := MustNewScheduleService(ScheduleServiceOptions{
		Repo:    &completingScheduleRepo{ScheduleRepository: f.scheduleRepo, clock: f.clock},
		Targets: f.targetRepo,
		Clock:   f.clock,
	})

	_, err := svc.Pause(ctx, schedule.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidTransition(err))
	assert.Equal(t, "Only active schedules can be paused", appErrMessage(t, err))

	// Completed is terminal; the lost pause must not revive the schedule.
	got, err := f.schedules.Get(ctx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleStatusCompleted, got.Status)
}

func TestScheduleServiceDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.createTarget(t)
	schedule := f.createSchedule(t, target.ID)

	require.NoError(t, f.schedules.Delete(ctx, schedule.ID))

	err := f.schedules.Delete(ctx, schedule.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestScheduleServiceList(t *testing.T) {
	f := newFixture(t)
	target := f.createTarget(t)
	f.createSchedule(t, target.ID)
	f.clock.Advance(time.Second)
	f.createSchedule(t, target.ID)

	schedules, err := f.schedules.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, schedules, 2)
}
