package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/cronhook/cronhook/internal/domain/model"
	"github.com/cronhook/cronhook/internal/migrate"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys=ON")
	require.NoError(t, err)
	require.NoError(t, migrate.Run(context.Background(), db))
	return db
}

func testClock() *FixedClock {
	return NewFixedClock(time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC))
}

func seedTarget(t *testing.T, repo *TargetRepo, clock Clock) *model.Target {
	t.Helper()
	now := clock.Now()
	target := &model.Target{
		ID:        uuid.NewString(),
		Name:      "health ping",
		URL:       "https://example.com/ping",
		Method:    "GET",
		Headers:   map[string]string{"Authorization": "Bearer token"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(context.Background(), target))
	return target
}

func seedSchedule(t *testing.T, repo *ScheduleRepo, targetID string, clock Clock) *model.Schedule {
	t.Helper()
	now := clock.Now()
	schedule := &model.Schedule{
		ID:                    uuid.NewString(),
		TargetID:              targetID,
		ScheduleType:          model.ScheduleTypeInterval,
		IntervalSeconds:       5,
		Status:                model.ScheduleStatusActive,
		StartedAt:             now,
		MaxRetries:            0,
		RequestTimeoutSeconds: 30,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	require.NoError(t, repo.Create(context.Background(), schedule))
	return schedule
}
