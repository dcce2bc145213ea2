// Package scheduler runs the periodic payment reconciliation sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"calmme-backend-go/internal/core"
)

const sweepTimeout = 2 * time.Minute

// ReconcileScheduler re-applies pending payment completion events on a cron
// schedule.
type ReconcileScheduler struct {
	cron    *cron.Cron
	billing core.BillingService
	logger  *zap.Logger
}

// NewReconcileScheduler creates a scheduler for the billing reconciliation
// sweep.
func NewReconcileScheduler(billing core.BillingService, logger *zap.Logger) *ReconcileScheduler {
	return &ReconcileScheduler{
		cron:    cron.New(),
		billing: billing,
		logger:  logger,
	}
}

// Start registers the sweep under the given cron schedule (e.g. "@every 5m")
// and starts the scheduler.
func (s *ReconcileScheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		if err := s.billing.ReconcilePayments(ctx); err != nil {
			s.logger.Error("payment reconciliation sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reconciliation sweep '%s': %w", schedule, err)
	}

	s.cron.Start()
	s.logger.Info("payment reconciliation scheduler started", zap.String("schedule", schedule))
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *ReconcileScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
