// Package config provides centralized configuration for the report tool.
// Values are read from environment variables (optionally seeded from a .env
// file) and may then be overridden by command-line flags. Validate is run
// after flags are applied so misconfiguration fails before any query runs.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	Query    QueryConfig
	Report   ReportConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds BioSQL connection settings.
type DatabaseConfig struct {
	// Driver selects the backend: postgres, mysql or sqlite (default: postgres)
	Driver string `env:"DB_DRIVER" default:"postgres"`

	// Name is the database name, or the database file for sqlite
	Name string `env:"DB_NAME" envAlt:"BIOSQL_DB"`

	// Host is the server to connect to (default: localhost)
	Host string `env:"DB_HOST" default:"localhost"`

	// Port is the server port; 0 means the driver's default
	Port int `env:"DB_PORT" default:"0"`

	// User is the database user name
	User string `env:"DB_USER"`

	// Password is the password for User
	Password string `env:"DB_PASSWORD"`

	// ConnectTimeout bounds connecting and the initial ping (default: 10s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"10s"`
}

// QueryConfig holds settings for the annotation queries.
type QueryConfig struct {
	// BatchSize is the number of identifiers bound into one statement (default: 900)
	BatchSize int `env:"QUERY_BATCH_SIZE" default:"900"`

	// Timeout bounds each statement; 0 disables the limit (default: 5m)
	Timeout time.Duration `env:"QUERY_TIMEOUT" default:"5m"`
}

// ReportConfig holds output settings.
type ReportConfig struct {
	// Output is the CSV destination; empty or "-" means stdout
	Output string `env:"REPORT_OUTPUT"`

	// IncludeMissing emits an empty row for identifiers with no annotations
	IncludeMissing bool `env:"REPORT_INCLUDE_MISSING" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: warn)
	Level string `env:"LOG_LEVEL" default:"warn"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Drivers lists the accepted driver names, including the aliases used by
// the Python BioSQL tooling.
var Drivers = []string{"postgres", "mysql", "sqlite", "psycopg2", "MySQLdb", "sqlite3"}

// NormalizeDriver maps a driver name or alias to its canonical form.
// Unknown names are returned unchanged so Validate can report them.
func NormalizeDriver(name string) string {
	switch name {
	case "psycopg2", "pgx", "postgresql":
		return "postgres"
	case "MySQLdb":
		return "mysql"
	case "sqlite3":
		return "sqlite"
	default:
		return name
	}
}
