package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/jmoreau/taskhive-backend/internal/app/model"
	"github.com/jmoreau/taskhive-backend/internal/app/repository"
	"github.com/jmoreau/taskhive-backend/pkg/logger"
	"github.com/jmoreau/taskhive-backend/pkg/mailer"
	"github.com/jmoreau/taskhive-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	ErrResetTokenExpired = errors.New("reset token has expired")
	ErrResetTokenUsed    = errors.New("reset token has already been used")
)

const (
	// ResetTokenExpiry is the duration for which a reset token is valid
	ResetTokenExpiry = 1 * time.Hour
	// ResetTokenLength is the byte length of the reset token
	ResetTokenLength = 32
)

type PasswordResetService interface {
	RequestReset(email string) error
	ValidateToken(token string) error
	ResetPassword(token, newPassword string) error
}

type passwordResetService struct {
	resetRepo repository.PasswordResetRepository
	userRepo  repository.UserRepository
	mailer    mailer.Mailer
	db        *gorm.DB
}

func NewPasswordResetService(
	resetRepo repository.PasswordResetRepository,
	userRepo repository.UserRepository,
	m mailer.Mailer,
	db *gorm.DB,
) PasswordResetService {
	return &passwordResetService{
		resetRepo: resetRepo,
		userRepo:  userRepo,
		mailer:    m,
		db:        db,
	}
}

// RequestReset issues a reset token for the account behind email. The caller
// always gets a nil error for unknown addresses so responses cannot be used
// to probe which emails are registered.
func (s *passwordResetService) RequestReset(email string) error {
	logger.Info("Processing password reset request", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for non-existent email", map[string]interface{}{
				"email": email,
			})
			return nil
		}
		logger.Error("Failed to find user for password reset", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	// Generate secure random token. Only its hash touches the database.
	plaintext, err := generateResetToken()
	if err != nil {
		logger.Error("Failed to generate reset token", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	reset := &model.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashResetToken(plaintext),
		ExpiresAt: time.Now().Add(ResetTokenExpiry),
		Used:      false,
	}

	// Replacing any outstanding token and creating the new one must land
	// together, keeping at most one live token per user.
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := s.resetRepo.DeleteUnusedByUserID(tx, user.ID); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Create(reset).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create password reset record", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit password reset transaction", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	// Deliver in the background. A mail failure must not change the response.
	go func() {
		if err := s.mailer.SendPasswordReset(email, plaintext); err != nil {
			logger.Error("Failed to send password reset email", err, map[string]interface{}{
				"email": email,
			})
		}
	}()

	logger.Info("Password reset token issued", map[string]interface{}{
		"user_id":    user.ID,
		"expires_at": reset.ExpiresAt,
	})

	return nil
}

// ValidateToken reports whether token could still be redeemed, without
// consuming it.
func (s *passwordResetService) ValidateToken(token string) error {
	reset, err := s.resetRepo.FindByTokenHash(hashResetToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	if reset.Used {
		return ErrResetTokenUsed
	}
	if time.Now().After(reset.ExpiresAt) {
		return ErrResetTokenExpired
	}
	return nil
}

func (s *passwordResetService) ResetPassword(token, newPassword string) error {
	logger.Info("Processing password reset with token")

	reset, err := s.resetRepo.FindByTokenHash(hashResetToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Invalid reset token provided")
			return ErrInvalidResetToken
		}
		logger.Error("Failed to find reset record", err, nil)
		return err
	}

	if time.Now().After(reset.ExpiresAt) {
		logger.Warn("Reset token has expired", map[string]interface{}{
			"user_id":    reset.UserID,
			"expires_at": reset.ExpiresAt,
		})
		return ErrResetTokenExpired
	}

	if reset.Used {
		logger.Warn("Reset token has already been used", map[string]interface{}{
			"user_id": reset.UserID,
		})
		return ErrResetTokenUsed
	}

	user, err := s.userRepo.FindByID(reset.UserID)
	if err != nil {
		logger.Error("Failed to find user for password reset", err, map[string]interface{}{
			"user_id": reset.UserID,
		})
		return err
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash new password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	// Consuming the token, swapping the password and clearing any other
	// outstanding tokens commit as one unit. The guarded update decides the
	// winner if two requests race on the same token.
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	consumed, err := s.resetRepo.ConsumeToken(tx, reset.ID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if !consumed {
		tx.Rollback()
		logger.Warn("Reset token consumed by a concurrent request", map[string]interface{}{
			"user_id": reset.UserID,
		})
		return ErrResetTokenUsed
	}

	if err := tx.Model(&model.User{}).Where("id = ?", user.ID).
		Update("password_hash", hashedPassword).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to update user password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	if err := s.resetRepo.DeleteUnusedByUserID(tx, user.ID); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit password reset", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	logger.Info("Password reset successful", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	return nil
}

// generateResetToken creates a cryptographically secure random token
func generateResetToken() (string, error) {
	bytes := make([]byte, ResetTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
