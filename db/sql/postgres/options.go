package postgres

import "time"

// Options configures the connection and pool behavior of Open.
type Options struct {
	// DSN is the lib/pq connection string. Required.
	DSN string
	// MaxOpenConns caps concurrent connections. The catalog workload is
	// read-heavy with short queries, so the default stays small.
	MaxOpenConns int
	// MaxIdleConns is the idle pool size.
	MaxIdleConns int
	// ConnMaxLifetime bounds how long a connection is reused.
	ConnMaxLifetime time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = 10
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = 5
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = 30 * time.Minute
	}
	return o
}

type Option func(*Options)

// WithDSN sets the connection string.
func WithDSN(dsn string) Option {
	return func(o *Options) { o.DSN = dsn }
}

// WithPoolLimits overrides the open and idle connection caps.
func WithPoolLimits(open, idle int) Option {
	return func(o *Options) {
		o.MaxOpenConns = open
		o.MaxIdleConns = idle
	}
}

// WithConnMaxLifetime overrides how long a connection may be reused.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(o *Options) { o.ConnMaxLifetime = d }
}
