package usecase

import (
	"context"
	"time"

	"finscope/internal/data/repository"
	"finscope/pkg/metrics"

	"go.uber.org/zap"
)

// sessionRetention keeps expired sessions around for a week before purging.
const sessionRetention = 7 * 24 * time.Hour

// Janitor periodically removes spent verification codes and stale sessions.
type Janitor struct {
	repo     *repository.Repository
	interval time.Duration
	log      *zap.Logger
	now      clock
}

func NewJanitor(repo *repository.Repository, interval time.Duration, log *zap.Logger) *Janitor {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Janitor{
		repo:     repo,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.log.Info("Janitor started", zap.Duration("interval", j.interval))

	for {
		select {
		case <-ctx.Done():
			j.log.Info("Janitor stopped")
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup pass. Failures are logged and retried on the next tick.
func (j *Janitor) Sweep(ctx context.Context) {
	now := j.now()

	codes, err := j.repo.OTP.DeleteExpiredOrUsed(ctx, now)
	if err != nil {
		j.log.Error("Failed to clean verification codes", zap.Error(err))
	} else if codes > 0 {
		metrics.MaintenanceDeletedTotal.WithLabelValues("verification_codes").Add(float64(codes))
		j.log.Info("Cleaned verification codes", zap.Int64("deleted", codes))
	}

	sessions, err := j.repo.Session.CleanExpiredSessions(ctx, now.Add(-sessionRetention))
	if err != nil {
		j.log.Error("Failed to clean sessions", zap.Error(err))
	} else if sessions > 0 {
		metrics.MaintenanceDeletedTotal.WithLabelValues("sessions").Add(float64(sessions))
		j.log.Info("Cleaned sessions", zap.Int64("deleted", sessions))
	}
}
