package model

import (
	"time"

	apperrors "github.com/cronhook/cronhook/internal/errors"
)

// ScheduleType distinguishes open-ended interval schedules from bounded windows.
type ScheduleType string

// ScheduleStatus represents the lifecycle state of a schedule.
type ScheduleStatus string

const (
	// ScheduleTypeInterval fires indefinitely every interval_seconds.
	ScheduleTypeInterval ScheduleType = "interval"
	// ScheduleTypeWindow fires every interval_seconds until its duration elapses.
	ScheduleTypeWindow ScheduleType = "window"

	// ScheduleStatusActive indicates the schedule is eligible for dispatch.
	ScheduleStatusActive ScheduleStatus = "active"
	// ScheduleStatusPaused indicates dispatch is suspended until resume.
	ScheduleStatusPaused ScheduleStatus = "paused"
	// ScheduleStatusCompleted indicates a window schedule past its expiry. Terminal.
	ScheduleStatusCompleted ScheduleStatus = "completed"
)

// Valid returns true if the ScheduleType is valid.
func (t ScheduleType) Valid() bool {
	return t == ScheduleTypeInterval || t == ScheduleTypeWindow
}

// Valid returns true if the ScheduleStatus is valid.
func (s ScheduleStatus) Valid() bool {
	return s == ScheduleStatusActive || s == ScheduleStatusPaused || s == ScheduleStatusCompleted
}

// Schedule defines when and how often to fire requests against a target.
//
// Window schedules carry both duration_seconds and expires_at; interval
// schedules carry neither. All timestamps are naive UTC.
type Schedule struct {
	ID                    string         `json:"id"                         db:"id"`
	TargetID              string         `json:"target_id"                  db:"target_id"`
	ScheduleType          ScheduleType   `json:"schedule_type"              db:"schedule_type"`
	IntervalSeconds       int            `json:"interval_seconds"           db:"interval_seconds"`
	DurationSeconds       *int           `json:"duration_seconds,omitempty" db:"duration_seconds"`
	Status                ScheduleStatus `json:"status"                     db:"status"`
	StartedAt             time.Time      `json:"started_at"                 db:"started_at"`
	ExpiresAt             *time.Time     `json:"expires_at,omitempty"       db:"expires_at"`
	LastRunAt             *time.Time     `json:"last_run_at,omitempty"      db:"last_run_at"`
	MaxRetries            int            `json:"max_retries"                db:"max_retries"`
	RequestTimeoutSeconds int            `json:"request_timeout_seconds"    db:"request_timeout_seconds"`
	CreatedAt             time.Time      `json:"created_at"                 db:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"                 db:"updated_at"`
}

// Interval returns the firing period as a duration.
func (s *Schedule) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// RequestTimeout returns the per-attempt timeout as a duration.
func (s *Schedule) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// Expired reports whether a window schedule has passed its expiry at now.
func (s *Schedule) Expired(now time.Time) bool {
	return s.ScheduleType == ScheduleTypeWindow && s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// Due reports whether the schedule should fire at now. Expired windows are
// never due; a schedule that has never run is immediately due.
func (s *Schedule) Due(now time.Time) bool {
	if s.Expired(now) {
		return false
	}
	if s.LastRunAt == nil {
		return true
	}
	return !now.Before(s.LastRunAt.Add(s.Interval()))
}

// CreateScheduleRequest represents a request to create a new schedule.
type CreateScheduleRequest struct {
	TargetID              string       `json:"target_id"`
	ScheduleType          ScheduleType `json:"schedule_type"`
	IntervalSeconds       int          `json:"interval_seconds"`
	DurationSeconds       *int         `json:"duration_seconds,omitempty"`
	MaxRetries            int          `json:"max_retries,omitempty"`
	RequestTimeoutSeconds int          `json:"request_timeout_seconds,omitempty"`
}

// Validate checks the request fields and applies defaults.
func (r *CreateScheduleRequest) Validate() error {
	if r.TargetID == "" {
		return apperrors.ValidationField("target_id", "target_id is required")
	}
	if !r.ScheduleType.Valid() {
		return apperrors.ValidationField("schedule_type", "schedule_type must be interval or window")
	}
	if r.IntervalSeconds < 1 {
		return apperrors.ValidationField("interval_seconds", "interval_seconds must be at least 1")
	}
	if r.ScheduleType == ScheduleTypeWindow {
		if r.DurationSeconds == nil {
			return apperrors.ValidationField("duration_seconds", "duration_seconds is required for window schedules")
		}
		if *r.DurationSeconds < 1 {
			return apperrors.ValidationField("duration_seconds", "duration_seconds must be at least 1")
		}
	} else if r.DurationSeconds != nil {
		return apperrors.ValidationField("duration_seconds", "duration_seconds is only valid for window schedules")
	}
	if r.MaxRetries < 0 {
		return apperrors.ValidationField("max_retries", "max_retries must be >= 0")
	}
	if r.RequestTimeoutSeconds == 0 {
		r.RequestTimeoutSeconds = 30
	}
	if r.RequestTimeoutSeconds < 1 {
		return apperrors.ValidationField("request_timeout_seconds", "request_timeout_seconds must be at least 1")
	}
	return nil
}
