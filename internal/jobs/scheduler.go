package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the background jobs on their cron schedules.
type Scheduler struct {
	cron       *cron.Cron
	reconciler *Reconciler
	logger     *slog.Logger
}

// NewScheduler creates a scheduler and registers the reconciliation job on
// the given cron spec (standard five-field format).
func NewScheduler(reconciler *Reconciler, reconcileSpec string, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New(cron.WithLocation(time.UTC))

	s := &Scheduler{
		cron:       c,
		reconciler: reconciler,
		logger:     logger,
	}

	if _, err := c.AddFunc(reconcileSpec, s.runReconcile); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) runReconcile() {
	if _, err := s.reconciler.Run(context.Background()); err != nil {
		s.logger.Error("Wallet reconciliation failed", slog.String("error", err.Error()))
	}
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Cron scheduler started")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron scheduler stopped")
}
