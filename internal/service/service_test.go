package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/cronhook/cronhook/internal/data"
	"github.com/cronhook/cronhook/internal/domain/model"
	"github.com/cronhook/cronhook/internal/migrate"
)

// fixture wires the full service stack over an in-memory database.
type fixture struct {
	clock     *data.FixedClock
	targets   *TargetService
	schedules *ScheduleService
	runs      *RunService
	metrics   *MetricsService

	targetRepo   *data.TargetRepo
	scheduleRepo *data.ScheduleRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys=ON")
	require.NoError(t, err)
	require.NoError(t, migrate.Run(context.Background(), db))

	clock := data.NewFixedClock(time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC))
	targetRepo := data.NewTargetRepo(db, clock)
	scheduleRepo := data.NewScheduleRepo(db, clock)
	runRepo := data.NewRunRepo(db, clock)

	return &fixture{
		clock: clock,
		targets: MustNewTargetService(TargetServiceOptions{
			Repo:  targetRepo,
			Clock: clock,
		}),
		schedules: MustNewScheduleService(ScheduleServiceOptions{
			Repo:    scheduleRepo,
			Targets: targetRepo,
			Clock:   clock,
		}),
		runs: MustNewRunService(RunServiceOptions{
			Repo: runRepo,
		}),
		metrics: MustNewMetricsService(MetricsServiceOptions{
			Repo: data.NewMetricsRepo(db),
		}),
		targetRepo:   targetRepo,
		scheduleRepo: scheduleRepo,
	}
}

func (f *fixture) createTarget(t *testing.T) *model.Target {
	t.Helper()
	target, err := f.targets.Create(context.Background(), model.CreateTargetRequest{
		Name: "health ping",
		URL:  "https://example.com/ping",
	})
	require.NoError(t, err)
	return target
}

func (f *fixture) createSchedule(t *testing.T, targetID string) *model.Schedule {
	t.Helper()
	schedule, err := f.schedules.Create(context.Background(), model.CreateScheduleRequest{
		TargetID:        targetID,
		ScheduleType:    model.ScheduleTypeInterval,
		IntervalSeconds: 5,
	})
	require.NoError(t, err)
	return schedule
}
