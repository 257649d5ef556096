// Package throttle counts failed logins per key and locks the key out once a
// threshold is reached within a window.
package throttle

import (
	"context"
	"time"
)

// Limiter is implemented in memory for single instances and on Redis when
// several instances share the load.
type Limiter interface {
	// Exceeded reports whether key has reached the failure threshold.
	Exceeded(ctx context.Context, key string) (bool, error)

	// RecordFailure counts one failure for key. The window starts at the
	// first failure.
	RecordFailure(ctx context.Context, key string) error

	// Reset forgets every failure for key.
	Reset(ctx context.Context, key string) error
}

type Config struct {
	MaxFailures int
	Window      time.Duration
}

var DefaultConfig = Config{MaxFailures: 10, Window: 15 * time.Minute}

func (c Config) withDefaults() Config {
	if c.MaxFailures <= 0 {
		c.MaxFailures = DefaultConfig.MaxFailures
	}
	if c.Window <= 0 {
		c.Window = DefaultConfig.Window
	}
	return c
}
