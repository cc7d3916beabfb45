package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultCheckTimeout bounds every component check.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	// Critical is set when the primary database check failed.
	Critical bool
}

type component struct {
	name     string
	pinger   Pinger
	required bool
}

// Service coordinates health checks.
type Service struct {
	components []component
	timeout    time.Duration
	logger     *zap.Logger
}

// New creates a Service. The database check is required; a failure marks the report critical.
func New(db Pinger) *Service {
	return &Service{
		components: []component{{name: "database", pinger: db, required: true}},
		timeout:    DefaultCheckTimeout,
		logger:     zap.NewNop(),
	}
}

// WithComponent adds an optional check. A nil pinger is ignored.
func (s *Service) WithComponent(name string, p Pinger) *Service {
	if p != nil {
		s.components = append(s.components, component{name: name, pinger: p})
	}
	return s
}

// WithTimeout overrides DefaultCheckTimeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Check runs every component check concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var mu sync.Mutex
	checks := make(map[string]CheckResult, len(s.components))
	critical := false

	var g errgroup.Group
	for _, c := range s.components {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			res := CheckOK
			if err := c.pinger.Ping(cctx); err != nil {
				res = CheckError
				s.logger.Warn("Health check failed", zap.String("component", c.name), zap.Error(err))
			}

			mu.Lock()
			checks[c.name] = res
			if res == CheckError && c.required {
				critical = true
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, Critical: critical}
}
