package model

import "time"

// RunStatus represents the outcome state of a run.
type RunStatus string

// ErrorType classifies why an attempt failed.
type ErrorType string

const (
	// RunStatusPending indicates a run whose attempts are still in flight.
	RunStatusPending RunStatus = "pending"
	// RunStatusSuccess indicates the final attempt returned a 2xx/3xx response.
	RunStatusSuccess RunStatus = "success"
	// RunStatusFailed indicates all attempts were exhausted without success.
	RunStatusFailed RunStatus = "failed"

	// ErrorTypeTimeout indicates the attempt exceeded its request timeout.
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeDNS indicates hostname resolution failed.
	ErrorTypeDNS ErrorType = "dns"
	// ErrorTypeConnection indicates TCP connect or TLS handshake failed.
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeHTTP4xx indicates a response with status in [400, 500).
	ErrorTypeHTTP4xx ErrorType = "http_4xx"
	// ErrorTypeHTTP5xx indicates a response with status in [500, 600).
	ErrorTypeHTTP5xx ErrorType = "http_5xx"
	// ErrorTypeUnknown covers everything else, including interruptions.
	ErrorTypeUnknown ErrorType = "unknown"
)

// Valid returns true if the RunStatus is valid.
func (s RunStatus) Valid() bool {
	return s == RunStatusPending || s == RunStatusSuccess || s == RunStatusFailed
}

// Run is a single scheduled execution containing one or more attempts.
// A run is pending exactly while completed_at is null.
type Run struct {
	ID          string     `json:"id"                     db:"id"`
	ScheduleID  string     `json:"schedule_id"            db:"schedule_id"`
	Status      RunStatus  `json:"status"                 db:"status"`
	StartedAt   time.Time  `json:"started_at"             db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"             db:"created_at"`
}

// RunDetail is a run with its full attempt history in attempt_number order.
type RunDetail struct {
	Run
	Attempts []Attempt `json:"attempts"`
}

// Attempt is a single HTTP request within a run, initial or retry.
// error_type is null exactly when status_code is in [200, 400).
type Attempt struct {
	ID                string     `json:"id"                      db:"id"`
	RunID             string     `json:"run_id"                  db:"run_id"`
	AttemptNumber     int        `json:"attempt_number"          db:"attempt_number"`
	StatusCode        *int       `json:"status_code"             db:"status_code"`
	LatencyMS         float64    `json:"latency_ms"              db:"latency_ms"`
	ResponseSizeBytes int        `json:"response_size_bytes"     db:"response_size_bytes"`
	ErrorType         *ErrorType `json:"error_type"              db:"error_type"`
	ErrorMessage      *string    `json:"error_message,omitempty" db:"error_message"`
	StartedAt         time.Time  `json:"started_at"              db:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"  db:"completed_at"`
	CreatedAt         time.Time  `json:"created_at"              db:"created_at"`
}

// Succeeded reports whether the attempt got a response in [200, 400).
func (a *Attempt) Succeeded() bool {
	return a.ErrorType == nil
}

// RunListOptions carries filters and pagination for run queries.
type RunListOptions struct {
	ScheduleID string
	Status     RunStatus
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int
	Offset     int
}
