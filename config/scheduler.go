package config

import "time"

const (
	defaultPollIntervalSeconds  = 1
	defaultShutdownGraceSeconds = 5
	defaultMaxConcurrent        = 50
	defaultMaxResponseBytes     = 10 << 20 // 10 MiB
)

// SchedulerConfig contains scheduler engine configuration.
type SchedulerConfig struct {
	// PollIntervalSeconds is the tick period of the scheduler loop.
	PollIntervalSeconds int `env:"SCHEDULER_POLL_INTERVAL_SECONDS" envDefault:"1"`

	// ShutdownGraceSeconds bounds how long shutdown waits for in-flight
	// run executors before cancelling their outbound requests.
	ShutdownGraceSeconds int `env:"SCHEDULER_SHUTDOWN_GRACE_SECONDS" envDefault:"5"`

	// MaxConcurrent caps the number of run executors in flight at once.
	// Schedules beyond the cap are skipped and re-evaluated next tick.
	MaxConcurrent int `env:"SCHEDULER_MAX_CONCURRENT" envDefault:"50"`
}

// Sanitize applies guardrails to scheduler configuration values.
func (s *SchedulerConfig) Sanitize() {
	if s.PollIntervalSeconds < 1 {
		s.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if s.ShutdownGraceSeconds < 1 {
		s.ShutdownGraceSeconds = defaultShutdownGraceSeconds
	}
	if s.MaxConcurrent < 1 {
		s.MaxConcurrent = defaultMaxConcurrent
	}
}

// PollInterval returns the tick period as a duration.
func (s SchedulerConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

// ShutdownGrace returns the shutdown grace period as a duration.
func (s SchedulerConfig) ShutdownGrace() time.Duration {
	return time.Duration(s.ShutdownGraceSeconds) * time.Second
}

// DispatchConfig contains outbound HTTP dispatch configuration.
type DispatchConfig struct {
	// MaxResponseBytes caps how much of a response body is read when
	// measuring response size. Oversize responses fail the attempt.
	MaxResponseBytes int64 `env:"DISPATCH_MAX_RESPONSE_BYTES" envDefault:"10485760"`
}

// Sanitize applies guardrails to dispatch configuration values.
func (d *DispatchConfig) Sanitize() {
	if d.MaxResponseBytes < 1 {
		d.MaxResponseBytes = defaultMaxResponseBytes
	}
}
