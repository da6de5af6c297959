package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// InactiveSessionTTL expires deactivated sessions on their own, so they
	// disappear even if nobody runs the cleanup. Zero keeps them until purged.
	InactiveSessionTTL time.Duration

	// MaxTxRetries bounds how often an optimistic transaction is retried
	// after a concurrent write to a watched key
	MaxTxRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:                "redis://localhost:6379",
		PoolSize:           10,
		MinIdleConns:       2,
		InactiveSessionTTL: 7 * 24 * time.Hour,
		MaxTxRetries:       50,
	}
}
