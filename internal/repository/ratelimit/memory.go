package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/teamaeris/opendata-api/internal/metrics"
)

const (
	cleanupInterval = 3 * time.Minute
	staleAfter      = 5 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory is a per-key token bucket kept in process memory.
type Memory struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	cfg      Config
	rate     rate.Limit
	now      func() time.Time
}

// NewMemory creates an in-process limiter refilling Requests tokens per Window.
func NewMemory(cfg Config) *Memory {
	cfg = cfg.normalized()
	return &Memory{
		limiters: make(map[string]*clientLimiter),
		cfg:      cfg,
		rate:     rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		now:      time.Now,
	}
}

// Allow takes one token from the key's bucket.
func (m *Memory) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()
	lim := m.get(key, now)

	res := lim.ReserveN(now, 1)
	d := Decision{Limit: m.cfg.Requests}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		d.RetryAfter = delay
		metrics.RateLimitRejectionsTotal.WithLabelValues("memory").Inc()
		return d, nil
	}
	d.Allowed = true
	d.Remaining = int(lim.TokensAt(now))
	return d, nil
}

func (m *Memory) get(key string, now time.Time) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.limiters[key]; ok {
		l.lastSeen = now
		return l.limiter
	}
	l := rate.NewLimiter(m.rate, m.cfg.Requests)
	m.limiters[key] = &clientLimiter{limiter: l, lastSeen: now}
	return l
}

// Run evicts idle buckets until ctx is done.
func (m *Memory) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.evict(m.now())
		}
	}
}

func (m *Memory) evict(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, l := range m.limiters {
		if now.Sub(l.lastSeen) > staleAfter {
			delete(m.limiters, key)
		}
	}
}

func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}
