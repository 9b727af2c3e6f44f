// Package data provides database repositories for the cronhook scheduler.
// Repositories are written over database/sql and work against both the
// embedded SQLite driver and Postgres via the pgx stdlib bridge.
package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/cronhook/cronhook/internal/domain/model"
	apperrors "github.com/cronhook/cronhook/internal/errors"
)

// TargetRepo provides database operations for targets.
type TargetRepo struct {
	db    *sql.DB
	clock Clock
}

// NewTargetRepo creates a new TargetRepo with the given database connection.
func NewTargetRepo(db *sql.DB, clock Clock) *TargetRepo {
	if clock == nil {
		clock = RealClock{}
	}
	return &TargetRepo{db: db, clock: clock}
}

const targetColumns = `id, name, url, method, headers, body_template, created_at, updated_at`

// Create inserts a new target row.
func (r *TargetRepo) Create(ctx context.Context, target *model.Target) error {
	headers, err := marshalHeaders(target.Headers)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO targets (id, name, url, method, headers, body_template, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		target.ID, target.Name, target.URL, target.Method,
		headers, nullableJSON(target.BodyTemplate),
		target.CreatedAt, target.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert target: %w", apperrors.MapDBError(err))
	}
	return nil
}

// GetByID fetches a single target, or a NotFound error.
func (r *TargetRepo) GetByID(ctx context.Context, id string) (*model.Target, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+targetColumns+` FROM targets WHERE id = $1`, id)
	target, err := scanTarget(row)
	if err != nil {
		return nil, fmt.Errorf("get target: %w", apperrors.MapDBError(err))
	}
	return target, nil
}

// List returns all targets ordered by most recently created.
func (r *TargetRepo) List(ctx context.Context) ([]*model.Target, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+targetColumns+` FROM targets ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query targets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	targets := make([]*model.Target, 0)
	for rows.Next() {
		target, scanErr := scanTarget(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan target: %w", scanErr)
		}
		targets = append(targets, target)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate targets: %w", err)
	}
	return targets, nil
}

// Update rewrites the mutable fields of an existing target.
func (r *TargetRepo) Update(ctx context.Context, target *model.Target) error {
	headers, err := marshalHeaders(target.Headers)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE targets
		SET name = $2, url = $3, method = $4, headers = $5, body_template = $6, updated_at = $7
		WHERE id = $1`,
		target.ID, target.Name, target.URL, target.Method,
		headers, nullableJSON(target.BodyTemplate), target.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update target: %w", apperrors.MapDBError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFound("target not found")
	}
	return nil
}

// Delete removes a target; dependent schedules, runs, and attempts cascade.
// Return semantics:
//   - (true, nil): target found and deleted
//   - (false, nil): target not found
func (r *TargetRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM targets WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete target: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTarget(row rowScanner) (*model.Target, error) {
	var (
		target  model.Target
		headers sql.NullString
		body    sql.NullString
	)
	err := row.Scan(
		&target.ID, &target.Name, &target.URL, &target.Method,
		&headers, &body, &target.CreatedAt, &target.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if headers.Valid && headers.String != "" {
		if err := json.Unmarshal([]byte(headers.String), &target.Headers); err != nil {
			return nil, fmt.Errorf("decode headers: %w", err)
		}
	}
	if body.Valid && body.String != "" {
		target.BodyTemplate = json.RawMessage(body.String)
	}
	return &target, nil
}

func marshalHeaders(headers map[string]string) (any, error) {
	if headers == nil {
		return nil, nil
	}
	b, err := json.Marshal(headers)
	if err != nil {
		return nil, fmt.Errorf("encode headers: %w", err)
	}
	return string(b), nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
