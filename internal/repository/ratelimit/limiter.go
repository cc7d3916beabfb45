package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter admits or rejects requests for a client key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Config is a fixed budget of Requests per Window.
type Config struct {
	Requests int
	Window   time.Duration
}

func (c Config) normalized() Config {
	if c.Requests <= 0 {
		c.Requests = 60
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	return c
}
