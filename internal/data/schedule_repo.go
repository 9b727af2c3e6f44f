package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cronhook/cronhook/internal/core"
	"github.com/cronhook/cronhook/internal/data/sqlutil"
	"github.com/cronhook/cronhook/internal/domain/model"
	apperrors "github.com/cronhook/cronhook/internal/errors"
)

// ScheduleRepo provides database operations for schedules.
type ScheduleRepo struct {
	db    *sql.DB
	clock Clock
}

// NewScheduleRepo creates a new ScheduleRepo with the given database connection.
func NewScheduleRepo(db *sql.DB, clock Clock) *ScheduleRepo {
	if clock == nil {
		clock = RealClock{}
	}
	return &ScheduleRepo{db: db, clock: clock}
}

const scheduleColumns = `id, target_id, schedule_type, interval_seconds, duration_seconds,
	status, started_at, expires_at, last_run_at, max_retries, request_timeout_seconds,
	created_at, updated_at`

// Create inserts a new schedule row.
func (r *ScheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedules (id, target_id, schedule_type, interval_seconds, duration_seconds,
			status, started_at, expires_at, last_run_at, max_retries, request_timeout_seconds,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		schedule.ID, schedule.TargetID, schedule.ScheduleType, schedule.IntervalSeconds,
		schedule.DurationSeconds, schedule.Status, schedule.StartedAt, schedule.ExpiresAt,
		schedule.LastRunAt, schedule.MaxRetries, schedule.RequestTimeoutSeconds,
		schedule.CreatedAt, schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", apperrors.MapDBError(err))
	}
	return nil
}

// GetByID fetches a single schedule, or a NotFound error.
func (r *ScheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id)
	schedule, err := scanSchedule(row)
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", apperrors.MapDBError(err))
	}
	return schedule, nil
}

// List returns all schedules ordered by most recently created.
func (r *ScheduleRepo) List(ctx context.Context) ([]*model.Schedule, error) {
	return r.query(ctx, `
		SELECT `+scheduleColumns+` FROM schedules ORDER BY created_at DESC`)
}

// ListActive returns every schedule in the active state. The engine calls
// this once per tick; ordering by created_at keeps dispatch order stable.
func (r *ScheduleRepo) ListActive(ctx context.Context) ([]*model.Schedule, error) {
	return r.query(ctx, `
		SELECT `+scheduleColumns+` FROM schedules WHERE status = $1 ORDER BY created_at`,
		model.ScheduleStatusActive)
}

func (r *ScheduleRepo) query(ctx context.Context, q string, args ...any) ([]*model.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	schedules := make([]*model.Schedule, 0)
	for rows.Next() {
		schedule, scanErr := scanSchedule(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan schedule: %w", scanErr)
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}
	return schedules, nil
}

// UpdateStatus moves a schedule to a new lifecycle state. When params.From is
// set the write applies only while the schedule is still in that state, so a
// concurrent transition (the engine completing a window, another pause) makes
// this a no-op instead of clobbering a terminal status.
// Return semantics:
//   - (true, nil): schedule found and updated
//   - (false, nil): schedule not found, or no longer in params.From
func (r *ScheduleRepo) UpdateStatus(ctx context.Context, params core.UpdateScheduleStatusParams) (bool, error) {
	q := `UPDATE schedules SET status = $2, updated_at = $3 WHERE id = $1`
	args := []any{params.ID, params.Status, params.Now}
	if params.From != "" {
		q += ` AND status = $4`
		args = append(args, params.From)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("update schedule status: %w", apperrors.MapDBError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a schedule; dependent runs and attempts cascade.
func (r *ScheduleRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete schedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// OpenRun inserts a pending run and advances the schedule's last_run_at in a
// single transaction, so a crash between the two writes cannot leave a run
// without a matching last_run_at advance.
func (r *ScheduleRepo) OpenRun(ctx context.Context, params core.OpenRunParams) (*model.Run, error) {
	run := &model.Run{
		ID:         params.RunID,
		ScheduleID: params.ScheduleID,
		Status:     model.RunStatusPending,
		StartedAt:  params.Now,
		CreatedAt:  params.Now,
	}
	err := sqlutil.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, schedule_id, status, started_at, completed_at, created_at)
			VALUES ($1, $2, $3, $4, NULL, $5)`,
			run.ID, run.ScheduleID, run.Status, run.StartedAt, run.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert run: %w", apperrors.MapDBError(err))
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE schedules SET last_run_at = $2, updated_at = $2 WHERE id = $1`,
			run.ScheduleID, params.Now,
		); err != nil {
			return fmt.Errorf("advance last_run_at: %w", apperrors.MapDBError(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

func scanSchedule(row rowScanner) (*model.Schedule, error) {
	var schedule model.Schedule
	err := row.Scan(
		&schedule.ID, &schedule.TargetID, &schedule.ScheduleType, &schedule.IntervalSeconds,
		&schedule.DurationSeconds, &schedule.Status, &schedule.StartedAt, &schedule.ExpiresAt,
		&schedule.LastRunAt, &schedule.MaxRetries, &schedule.RequestTimeoutSeconds,
		&schedule.CreatedAt, &schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}
