package data

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cronhook/cronhook/internal/core"
	"github.com/cronhook/cronhook/internal/data/sqlutil"
	"github.com/cronhook/cronhook/internal/domain/model"
	apperrors "github.com/cronhook/cronhook/internal/errors"
)

// RunRepo provides database operations for runs and their attempts.
type RunRepo struct {
	db    *sql.DB
	clock Clock
}

// NewRunRepo creates a new RunRepo with the given database connection.
func NewRunRepo(db *sql.DB, clock Clock) *RunRepo {
	if clock == nil {
		clock = RealClock{}
	}
	return &RunRepo{db: db, clock: clock}
}

const runColumns = `id, schedule_id, status, started_at, completed_at, created_at`

const attemptColumns = `id, run_id, attempt_number, status_code, latency_ms,
	response_size_bytes, error_type, error_message, started_at, completed_at, created_at`

// GetWithAttempts fetches a run and its attempts in attempt_number order.
func (r *RunRepo) GetWithAttempts(ctx context.Context, id string) (*model.RunDetail, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+runColumns+` FROM runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", apperrors.MapDBError(err))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+attemptColumns+` FROM attempts WHERE run_id = $1 ORDER BY attempt_number`, id)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	detail := &model.RunDetail{Run: *run, Attempts: make([]model.Attempt, 0)}
	for rows.Next() {
		attempt, scanErr := scanAttempt(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan attempt: %w", scanErr)
		}
		detail.Attempts = append(detail.Attempts, *attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return detail, nil
}

// List returns runs matching the given filters, newest first.
func (r *RunRepo) List(ctx context.Context, opts model.RunListOptions) ([]*model.Run, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if opts.ScheduleID != "" {
		where = append(where, "schedule_id = "+arg(opts.ScheduleID))
	}
	if opts.Status != "" {
		where = append(where, "status = "+arg(opts.Status))
	}
	if opts.StartTime != nil {
		where = append(where, "started_at >= "+arg(*opts.StartTime))
	}
	if opts.EndTime != nil {
		where = append(where, "started_at <= "+arg(*opts.EndTime))
	}

	q := `SELECT ` + runColumns + ` FROM runs`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC LIMIT " + arg(opts.Limit) + " OFFSET " + arg(opts.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]*model.Run, 0)
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan run: %w", scanErr)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Finalize records the terminal status and completion time of a run.
func (r *RunRepo) Finalize(ctx context.Context, params core.FinalizeRunParams) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE runs SET status = $2, completed_at = $3 WHERE id = $1`,
		params.RunID, params.Status, params.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("finalize run: %w", apperrors.MapDBError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFound("run not found")
	}
	return nil
}

// AppendAttempt persists one attempt of a run.
func (r *RunRepo) AppendAttempt(ctx context.Context, attempt *model.Attempt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attempts (id, run_id, attempt_number, status_code, latency_ms,
			response_size_bytes, error_type, error_message, started_at, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		attempt.ID, attempt.RunID, attempt.AttemptNumber, attempt.StatusCode,
		attempt.LatencyMS, attempt.ResponseSizeBytes, attempt.ErrorType,
		attempt.ErrorMessage, attempt.StartedAt, attempt.CompletedAt, attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", apperrors.MapDBError(err))
	}
	return nil
}

// MarkOrphans fails every run still pending, appending a synthetic attempt
// recording unknown/"interrupted". Called once at startup before the first
// tick, when no run can legitimately be in flight. Safe to call repeatedly;
// a second sweep finds nothing pending.
func (r *RunRepo) MarkOrphans(ctx context.Context, now time.Time) (int, error) {
	count := 0
	err := sqlutil.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, started_at FROM runs WHERE status = $1`, model.RunStatusPending)
		if err != nil {
			return fmt.Errorf("query orphan runs: %w", err)
		}
		type orphan struct {
			id        string
			startedAt time.Time
		}
		var orphans []orphan
		for rows.Next() {
			var o orphan
			if err := rows.Scan(&o.id, &o.startedAt); err != nil {
				_ = rows.Close()
				return fmt.Errorf("scan orphan run: %w", err)
			}
			orphans = append(orphans, o)
		}
		if err := rows.Close(); err != nil {
			return fmt.Errorf("close orphan rows: %w", err)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate orphan runs: %w", err)
		}

		errType := model.ErrorTypeUnknown
		errMsg := "interrupted"
		for _, o := range orphans {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO attempts (id, run_id, attempt_number, status_code, latency_ms,
					response_size_bytes, error_type, error_message, started_at, completed_at, created_at)
				VALUES ($1, $2,
					(SELECT COALESCE(MAX(attempt_number), 0) + 1 FROM attempts WHERE run_id = $2),
					NULL, 0, 0, $3, $4, $5, $6, $6)`,
				uuid.NewString(), o.id, errType, errMsg, o.startedAt, now,
			); err != nil {
				return fmt.Errorf("insert orphan attempt: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE runs SET status = $2, completed_at = $3 WHERE id = $1`,
				o.id, model.RunStatusFailed, now,
			); err != nil {
				return fmt.Errorf("fail orphan run: %w", err)
			}
		}
		count = len(orphans)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func scanRun(row rowScanner) (*model.Run, error) {
	var run model.Run
	err := row.Scan(
		&run.ID, &run.ScheduleID, &run.Status,
		&run.StartedAt, &run.CompletedAt, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func scanAttempt(row rowScanner) (*model.Attempt, error) {
	var attempt model.Attempt
	err := row.Scan(
		&attempt.ID, &attempt.RunID, &attempt.AttemptNumber, &attempt.StatusCode,
		&attempt.LatencyMS, &attempt.ResponseSizeBytes, &attempt.ErrorType,
		&attempt.ErrorMessage, &attempt.StartedAt, &attempt.CompletedAt, &attempt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}
