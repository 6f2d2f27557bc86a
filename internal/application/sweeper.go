package application

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper drives the overdue promotion engine on a fixed interval. It
// runs concurrently with operator traffic; correctness relies on the
// per-row compare-and-swap in Sweep, not on any shared lock.
type Sweeper struct {
	service  *BookingService
	interval time.Duration
	logger   *zap.Logger
}

// NewSweeper creates a Sweeper that runs every interval.
func NewSweeper(service *BookingService, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

// Run ticks until the context is cancelled. A failed sweep is logged
// and retried on the next tick; the sweep is stateless across runs, so
// an interrupted pass simply resumes with the full active set.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("overdue sweeper started", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("overdue sweeper stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	now := time.Now().UTC()
	promoted, err := s.service.Sweep(ctx, now)
	if err != nil {
		s.logger.Error("overdue sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("overdue sweep completed",
		zap.Time("now", now),
		zap.Int("promoted", promoted),
	)
}
