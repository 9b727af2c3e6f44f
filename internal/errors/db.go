package errors

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapDBError maps database errors to AppError instances:
//   - sql.ErrNoRows / pgx.ErrNoRows → NotFound
//   - Foreign key violations → NotFound (the referenced row is gone)
//   - Unique constraint violations → Conflict
//   - Check / NOT NULL violations → Validation
//
// Unrecognized errors are returned unchanged so callers can wrap them.
// Both the pgx and the sqlite driver paths funnel through here; sqlite
// reports constraint failures as plain errors matched by message.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Code: ErrCodeNotFound, Message: "resource not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	if mapped := mapSQLiteError(err); mapped != nil {
		return mapped
	}

	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.ForeignKeyViolation:
		return &AppError{Code: ErrCodeNotFound, Message: "referenced resource not found", Cause: pgErr}
	case pgerrcode.UniqueViolation:
		return &AppError{Code: ErrCodeConflict, Message: "resource already exists", Cause: pgErr}
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return &AppError{Code: ErrCodeValidation, Message: "invalid field value", Field: pgErr.ColumnName, Cause: pgErr}
	default:
		return &AppError{Code: ErrCodeInternal, Message: "database error", Cause: pgErr}
	}
}

// mapSQLiteError recognizes modernc.org/sqlite constraint failures, which
// surface as errors whose message carries the SQLITE_CONSTRAINT_* name.
func mapSQLiteError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return &AppError{Code: ErrCodeNotFound, Message: "referenced resource not found", Cause: err}
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return &AppError{Code: ErrCodeConflict, Message: "resource already exists", Cause: err}
	case strings.Contains(msg, "CHECK constraint failed"), strings.Contains(msg, "NOT NULL constraint failed"):
		return &AppError{Code: ErrCodeValidation, Message: "invalid field value", Cause: err}
	}
	return nil
}
