package scheduler

import (
	"github.com/jmoreau/taskhive-backend/internal/app/repository"
	"github.com/jmoreau/taskhive-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// TokenCleanupScheduler purges expired password reset tokens on a schedule
type TokenCleanupScheduler struct {
	cron      *cron.Cron
	resetRepo repository.PasswordResetRepository
}

func NewTokenCleanupScheduler(resetRepo repository.PasswordResetRepository) *TokenCleanupScheduler {
	return &TokenCleanupScheduler{
		cron:      cron.New(),
		resetRepo: resetRepo,
	}
}

// Start registers the cleanup job, daily at 03:00
func (s *TokenCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		logger.Info("Starting scheduled reset token cleanup")

		deleted, err := s.resetRepo.DeleteExpired()
		if err != nil {
			logger.Error("Failed to clean up expired reset tokens", err)
			return
		}

		logger.Info("Expired reset tokens cleaned up", map[string]interface{}{
			"deleted": deleted,
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for reset token cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Token cleanup scheduler started successfully (daily at 3:00 AM)")

	return nil
}

// Stop halts the scheduler
func (s *TokenCleanupScheduler) Stop() {
	logger.Info("Stopping token cleanup scheduler...")
	s.cron.Stop()
	logger.Info("Token cleanup scheduler stopped")
}
