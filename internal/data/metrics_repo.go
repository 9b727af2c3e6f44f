package data

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/cronhook/cronhook/internal/domain/model"
)

// MetricsRepo aggregates run history into the metrics snapshot served by the
// control plane.
type MetricsRepo struct {
	db *sql.DB
}

// NewMetricsRepo creates a new MetricsRepo with the given database connection.
func NewMetricsRepo(db *sql.DB) *MetricsRepo {
	return &MetricsRepo{db: db}
}

// Aggregate builds the full snapshot: global schedule and run counters, the
// average latency across all attempts, and a per-schedule breakdown.
func (r *MetricsRepo) Aggregate(ctx context.Context) (*model.MetricsSnapshot, error) {
	snapshot := &model.MetricsSnapshot{Schedules: make([]model.ScheduleMetrics, 0)}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(CASE WHEN status = $1 THEN 1 END),
		       COUNT(CASE WHEN status = $2 THEN 1 END)
		FROM schedules`,
		model.ScheduleStatusActive, model.ScheduleStatusPaused,
	).Scan(&snapshot.TotalSchedules, &snapshot.ActiveSchedules, &snapshot.PausedSchedules)
	if err != nil {
		return nil, fmt.Errorf("count schedules: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(CASE WHEN status = $1 THEN 1 END),
		       COUNT(CASE WHEN status = $2 THEN 1 END)
		FROM runs`,
		model.RunStatusSuccess, model.RunStatusFailed,
	).Scan(&snapshot.TotalRuns, &snapshot.TotalSuccess, &snapshot.TotalFailures)
	if err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}

	var avg sql.NullFloat64
	err = r.db.QueryRowContext(ctx, `SELECT AVG(latency_ms) FROM attempts`).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("average latency: %w", err)
	}
	snapshot.AvgLatencyMS = roundedLatency(avg)

	perSchedule, err := r.perScheduleMetrics(ctx)
	if err != nil {
		return nil, err
	}
	snapshot.Schedules = perSchedule
	return snapshot, nil
}

type scheduleRef struct {
	id        string
	lastRunAt *time.Time
}

func (r *MetricsRepo) perScheduleMetrics(ctx context.Context) ([]model.ScheduleMetrics, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, last_run_at FROM schedules ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	var refs []scheduleRef
	for rows.Next() {
		var ref scheduleRef
		if err := rows.Scan(&ref.id, &ref.lastRunAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close schedule rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}

	metrics := make([]model.ScheduleMetrics, 0, len(refs))
	for _, ref := range refs {
		m := model.ScheduleMetrics{ScheduleID: ref.id}
		err := r.db.QueryRowContext(ctx, `
			SELECT COUNT(*), COUNT(CASE WHEN status = $2 THEN 1 END)
			FROM runs WHERE schedule_id = $1`,
			ref.id, model.RunStatusSuccess,
		).Scan(&m.TotalRuns, &m.SuccessCount)
		if err != nil {
			return nil, fmt.Errorf("count schedule runs: %w", err)
		}
		m.FailureCount = m.TotalRuns - m.SuccessCount

		var avg sql.NullFloat64
		err = r.db.QueryRowContext(ctx, `
			SELECT AVG(latency_ms) FROM attempts
			WHERE run_id IN (SELECT id FROM runs WHERE schedule_id = $1)`,
			ref.id,
		).Scan(&avg)
		if err != nil {
			return nil, fmt.Errorf("average schedule latency: %w", err)
		}
		m.AvgLatencyMS = roundedLatency(avg)

		if ref.lastRunAt != nil {
			s := formatTimestamp(*ref.lastRunAt)
			m.LastRunAt = &s
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

// roundedLatency rounds to two decimals. A zero or absent average is
// reported as null.
func roundedLatency(avg sql.NullFloat64) *float64 {
	if !avg.Valid || avg.Float64 == 0 {
		return nil
	}
	v := math.Round(avg.Float64*100) / 100
	return &v
}

// formatTimestamp renders a naive UTC instant as "YYYY-MM-DD HH:MM:SS" with
// a fractional part only when sub-second precision is present.
func formatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.Format("2006-01-02 15:04:05.000000")
}
