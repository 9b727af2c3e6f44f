package model

// ScheduleMetrics is the aggregated run history for a single schedule.
type ScheduleMetrics struct {
	ScheduleID   string   `json:"schedule_id"`
	TotalRuns    int      `json:"total_runs"`
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	AvgLatencyMS *float64 `json:"avg_latency_ms"`
	LastRunAt    *string  `json:"last_run_at"`
}

// MetricsSnapshot is the top-level metrics aggregation across all schedules.
type MetricsSnapshot struct {
	TotalSchedules  int               `json:"total_schedules"`
	ActiveSchedules int               `json:"active_schedules"`
	PausedSchedules int               `json:"paused_schedules"`
	TotalRuns       int               `json:"total_runs"`
	TotalSuccess    int               `json:"total_success"`
	TotalFailures   int               `json:"total_failures"`
	AvgLatencyMS    *float64          `json:"avg_latency_ms"`
	Schedules       []ScheduleMetrics `json:"schedules"`
}
