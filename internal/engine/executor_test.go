package engine

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/cronhook/cronhook/internal/core"
	"github.com/cronhook/cronhook/internal/data"
	"github.com/cronhook/cronhook/internal/dispatch"
	"github.com/cronhook/cronhook/internal/domain/model"
	apperrors "github.com/cronhook/cronhook/internal/errors"
	"github.com/cronhook/cronhook/internal/migrate"
)

type testEnv struct {
	db        *sql.DB
	clock     *data.FixedClock
	targets   *data.TargetRepo
	schedules *data.ScheduleRepo
	runs      *data.RunRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys=ON")
	require.NoError(t, err)
	require.NoError(t, migrate.Run(context.Background(), db))

	clock := data.NewFixedClock(time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC))
	return &testEnv{
		db:        db,
		clock:     clock,
		targets:   data.NewTargetRepo(db, clock),
		schedules: data.NewScheduleRepo(db, clock),
		runs:      data.NewRunRepo(db, clock),
	}
}

func (env *testEnv) seedTarget(t *testing.T, url string) *model.Target {
	t.Helper()
	now := env.clock.Now()
	target := &model.Target{
		ID:        uuid.NewString(),
		Name:      "probe",
		URL:       url,
		Method:    "GET",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, env.targets.Create(context.Background(), target))
	return target
}

func (env *testEnv) seedSchedule(t *testing.T, targetID string, maxRetries int) *model.Schedule {
	t.Helper()
	now := env.clock.Now()
	schedule := &model.Schedule{
		ID:                    uuid.NewString(),
		TargetID:              targetID,
		ScheduleType:          model.ScheduleTypeInterval,
		IntervalSeconds:       1,
		Status:                model.ScheduleStatusActive,
		StartedAt:             now,
		MaxRetries:            maxRetries,
		RequestTimeoutSeconds: 5,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	require.NoError(t, env.schedules.Create(context.Background(), schedule))
	return schedule
}

func (env *testEnv) newExecutor(targets core.TargetRepository) *Executor {
	return NewExecutor(ExecutorOptions{
		Targets:    targets,
		Schedules:  env.schedules,
		Runs:       env.runs,
		Dispatcher: dispatch.New(dispatch.Options{Clock: env.clock}),
		Clock:      env.clock,
	})
}

func (env *testEnv) singleRun(t *testing.T, scheduleID string) *model.RunDetail {
	t.Helper()
	runs, err := env.runs.List(context.Background(), model.RunListOptions{ScheduleID: scheduleID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	detail, err := env.runs.GetWithAttempts(context.Background(), runs[0].ID)
	require.NoError(t, err)
	return detail
}

func TestExecutorSuccessfulRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	env := newTestEnv(t)
	target := env.seedTarget(t, server.URL)
	schedule := env.seedSchedule(t, target.ID, 2)

	env.newExecutor(env.targets).Execute(context.Background(), schedule)

	detail := env.singleRun(t, schedule.ID)
	assert.Equal(t, model.RunStatusSuccess, detail.Status)
	assert.NotNil(t, detail.CompletedAt)
	require.Len(t, detail.Attempts, 1)
	require.NotNil(t, detail.Attempts[0].StatusCode)
	assert.Equal(t, 200, *detail.Attempts[0].StatusCode)
	assert.Nil(t, detail.Attempts[0].ErrorType)

	got, err := env.schedules.GetByID(context.Background(), schedule.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastRunAt)
}

func TestExecutorRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	env := newTestEnv(t)
	target := env.seedTarget(t, server.URL)
	schedule := env.seedSchedule(t, target.ID, 2)

	env.newExecutor(env.targets).Execute(context.Background(), schedule)

	detail := env.singleRun(t, schedule.ID)
	assert.Equal(t, model.RunStatusSuccess, detail.Status)
	require.Len(t, detail.Attempts, 3)
	require.NotNil(t, detail.Attempts[0].ErrorType)
	assert.Equal(t, model.ErrorTypeHTTP5xx, *detail.Attempts[0].ErrorType)
	assert.Nil(t, detail.Attempts[2].ErrorType)
}

func TestExecutorExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	env := newTestEnv(t)
	target := env.seedTarget(t, server.URL)
	schedule := env.seedSchedule(t, target.ID, 2)

	env.newExecutor(env.targets).Execute(context.Background(), schedule)

	detail := env.singleRun(t, schedule.ID)
	assert.Equal(t, model.RunStatusFailed, detail.Status)
	require.Len(t, detail.Attempts, 3)
	for _, attempt := range detail.Attempts {
		require.NotNil(t, attempt.ErrorType)
		assert.Equal(t, model.ErrorTypeHTTP5xx, *attempt.ErrorType)
		require.NotNil(t, attempt.ErrorMessage)
		assert.Equal(t, "HTTP 502", *attempt.ErrorMessage)
	}
}

func TestExecutorCancelledMidDispatch(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	env := newTestEnv(t)
	target := env.seedTarget(t, server.URL)
	schedule := env.seedSchedule(t, target.ID, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		env.newExecutor(env.targets).Execute(ctx, schedule)
		close(done)
	}()

	<-started
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("executor did not return after cancellation")
	}

	// The interrupted run is closed, not left pending, and the cancelled
	// attempt is recorded without burning the remaining retries.
	detail := env.singleRun(t, schedule.ID)
	assert.Equal(t, model.RunStatusFailed, detail.Status)
	assert.NotNil(t, detail.CompletedAt)
	require.Len(t, detail.Attempts, 1)
	require.NotNil(t, detail.Attempts[0].ErrorType)
	assert.Equal(t, model.ErrorTypeUnknown, *detail.Attempts[0].ErrorType)
	require.NotNil(t, detail.Attempts[0].ErrorMessage)
	assert.Equal(t, "canceled", *detail.Attempts[0].ErrorMessage)
}

// missingTargets simulates a target deleted between admission and execution.
type missingTargets struct{}

func (missingTargets) Create(context.Context, *model.Target) error { return nil }
func (missingTargets) GetByID(context.Context, string) (*model.Target, error) {
	return nil, apperrors.NotFound("Target not found")
}
func (missingTargets) List(context.Context) ([]*model.Target, error) { return nil, nil }
func (missingTargets) Update(context.Context, *model.Target) error   { return nil }
func (missingTargets) Delete(context.Context, string) (bool, error)  { return false, nil }

func TestExecutorTargetMissingFailsRun(t *testing.T) {
	env := newTestEnv(t)
	target := env.seedTarget(t, "https://example.com/ping")
	schedule := env.seedSchedule(t, target.ID, 3)

	env.newExecutor(missingTargets{}).Execute(context.Background(), schedule)

	detail := env.singleRun(t, schedule.ID)
	assert.Equal(t, model.RunStatusFailed, detail.Status)
	require.Len(t, detail.Attempts, 1, "no retries once the target is gone")
	require.NotNil(t, detail.Attempts[0].ErrorType)
	assert.Equal(t, model.ErrorTypeUnknown, *detail.Attempts[0].ErrorType)
	require.NotNil(t, detail.Attempts[0].ErrorMessage)
	assert.Equal(t, "target missing", *detail.Attempts[0].ErrorMessage)
}
