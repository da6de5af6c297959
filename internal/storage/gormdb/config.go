package gormdb

import "time"

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds relational database settings
type Config struct {
	// Driver selects the dialect: "postgres" or "sqlite"
	Driver string

	// DSN is a PostgreSQL connection string or a SQLite file path
	DSN string

	// Pool settings (PostgreSQL only; SQLite always uses one connection)
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Debug logs every statement through GORM's logger
	Debug bool
}

// DefaultConfig returns a SQLite configuration writing to echoshift.db
func DefaultConfig() Config {
	return Config{
		Driver:          DriverSQLite,
		DSN:             "echoshift.db",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
	}
}
