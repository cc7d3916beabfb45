package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teamaeris/opendata-api/internal/metrics"
)

const keyPrefix = "ratelimit:"

// windowCounter is the consumer interface for a shared counter store (ISP).
type windowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Redis is a fixed-window limiter shared by every replica.
type Redis struct {
	counter  windowCounter
	cfg      Config
	fallback Limiter
	logger   *zap.Logger
}

// RedisOption configures a Redis limiter.
type RedisOption func(*Redis)

// WithFallback sets the limiter used while Redis is unreachable.
func WithFallback(l Limiter) RedisOption {
	return func(r *Redis) { r.fallback = l }
}

// WithLogger sets the logger for counter failures.
func WithLogger(l *zap.Logger) RedisOption {
	return func(r *Redis) { r.logger = l }
}

// NewRedis creates a Redis-backed limiter.
func NewRedis(counter windowCounter, cfg Config, opts ...RedisOption) *Redis {
	r := &Redis{counter: counter, cfg: cfg.normalized(), logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Allow counts the request against the key's current window.
func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	count, ttl, err := r.counter.IncrWindow(ctx, keyPrefix+key, r.cfg.Window)
	if err != nil {
		if r.fallback == nil {
			return Decision{}, err
		}
		r.logger.Warn("rate limit counter failed, using local limiter", zap.Error(err))
		return r.fallback.Allow(ctx, key)
	}

	d := Decision{Limit: r.cfg.Requests, Allowed: count <= int64(r.cfg.Requests)}
	if d.Allowed {
		d.Remaining = r.cfg.Requests - int(count)
		return d, nil
	}
	d.RetryAfter = ttl
	metrics.RateLimitRejectionsTotal.WithLabelValues("redis").Inc()
	return d, nil
}
