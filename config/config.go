package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Database configuration
//   - http.go: HTTP server configuration
//   - scheduler.go: Scheduler engine and dispatcher configuration
type AppConfig struct {
	// Database configuration
	Database DatabaseConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// Scheduler engine configuration
	Scheduler SchedulerConfig

	// Outbound dispatch configuration
	Dispatch DispatchConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Scheduler.Sanitize()
	c.Dispatch.Sanitize()
}
