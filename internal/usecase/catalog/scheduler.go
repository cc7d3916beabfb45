package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunPeriodic rebuilds the snapshots every interval until ctx is cancelled.
// A failed rebuild is logged and retried on the next tick.
func (s *Service) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Periodic rank rebuild enabled", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RebuildRankSnapshots(ctx); err != nil {
				s.logger.Error("Periodic rank rebuild failed", zap.Error(err))
			}
		}
	}
}
