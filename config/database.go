package config

import "strings"

// DatabaseConfig contains database connection configuration.
//
// The URL scheme selects the driver: sqlite:// (or a bare file path) opens
// an embedded SQLite database via modernc.org/sqlite, postgres:// connects
// through pgx. All authoritative scheduler state lives here.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envDefault:"sqlite://cronhook.db"`
}

// IsPostgres reports whether the configured URL points at a Postgres server.
func (d DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(d.URL, "postgres://") || strings.HasPrefix(d.URL, "postgresql://")
}

// SQLitePath returns the on-disk path for a SQLite URL. It accepts both
// sqlite://path and bare paths; the result is meaningless for Postgres URLs.
func (d DatabaseConfig) SQLitePath() string {
	path := strings.TrimPrefix(d.URL, "sqlite://")
	if path == "" {
		path = "cronhook.db"
	}
	return path
}
