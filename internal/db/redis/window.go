package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/teamaeris/opendata-api/internal/db"
)

// IncrWindow increments the counter at key and starts its expiry on the first
// hit of a window. It returns the new count and the time left in the window.
func (s *Store) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	secs := int64(window / time.Second)
	if secs < 1 {
		secs = 1
	}

	resps := s.client.DoMulti(ctx,
		s.b().Incr().Key(key).Build(),
		s.b().Expire().Key(key).Seconds(secs).Nx().Build(),
		s.b().Pttl().Key(key).Build(),
	)

	count, err := resps[0].AsInt64()
	if err != nil {
		return 0, 0, &db.Error{Op: db.OpIncr, Err: fmt.Errorf("key %s: %w", key, err)}
	}
	if err := resps[1].Error(); err != nil {
		return 0, 0, &db.Error{Op: db.OpExpire, Err: fmt.Errorf("key %s: %w", key, err)}
	}

	ttl := time.Duration(secs) * time.Second
	// PTTL failures are not fatal; fall back to the full window.
	if ms, err := resps[2].AsInt64(); err == nil && ms > 0 {
		ttl = time.Duration(ms) * time.Millisecond
	}
	return count, ttl, nil
}
