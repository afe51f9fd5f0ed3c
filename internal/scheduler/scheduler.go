// Package scheduler keeps the all-scan cache warm on a cron cadence so the
// hot HTTP path rarely pays recomputation latency.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/cache"
	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/scanner"
)

// defaultWarmSpec recomputes the all-scan every ten minutes
const defaultWarmSpec = "*/10 * * * *"

// warmTimeout bounds one warming pass
const warmTimeout = 5 * time.Minute

// Scheduler manages the cache warming job
type Scheduler struct {
	cron      *cron.Cron
	scanner   *scanner.PropsScanner
	logger    *logrus.Logger
	mu        sync.Mutex
	isRunning bool
}

// New creates a scheduler with its warming job registered from config
func New(cfg config.SchedulerConfig, propsScanner *scanner.PropsScanner, logger *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		scanner: propsScanner,
		logger:  logger,
	}

	spec := cfg.WarmSpec
	if spec == "" {
		spec = defaultWarmSpec
	}

	if _, err := s.cron.AddFunc(spec, s.warm); err != nil {
		return nil, fmt.Errorf("failed to schedule cache warming: %w", err)
	}

	return s, nil
}

// Start begins executing the warming job on its cadence
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.cron.Start()
	s.isRunning = true
	if s.logger != nil {
		s.logger.Info("Cache warming scheduler started")
	}
}

// Stop halts scheduling and waits for a running warm pass to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	if s.logger != nil {
		s.logger.Info("Cache warming scheduler stopped")
	}
}

// warm invalidates the all-scan and recomputes it so the next request hits
// a fresh cache entry
func (s *Scheduler) warm() {
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()

	if err := s.scanner.InvalidateScope(ctx, cache.ScopeAll); err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Warn("Cache warming invalidation failed")
		}
		return
	}

	records, err := s.scanner.ScanAll(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Warn("Cache warming scan failed")
		}
		return
	}

	if s.logger != nil {
		s.logger.WithField("records", len(records)).Info("Warmed all-scan cache")
	}
}
