package repository

import (
	"time"

	"github.com/jmoreau/taskhive-backend/internal/app/model"
	"github.com/jmoreau/taskhive-backend/pkg/logger"
	"gorm.io/gorm"
)

type PasswordResetRepository interface {
	Create(token *model.PasswordResetToken) error
	FindByTokenHash(tokenHash string) (*model.PasswordResetToken, error)
	DeleteUnusedByUserID(tx *gorm.DB, userID uint) error
	ConsumeToken(tx *gorm.DB, id uint) (bool, error)
	DeleteExpired() (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(token *model.PasswordResetToken) error {
	logger.Debug("Creating password reset token in database", map[string]interface{}{
		"user_id": token.UserID,
	})

	if err := r.db.Create(token).Error; err != nil {
		logger.Error("Failed to create password reset token in database", err, map[string]interface{}{
			"user_id": token.UserID,
		})
		return err
	}

	logger.Debug("Password reset token created in database", map[string]interface{}{
		"id":      token.ID,
		"user_id": token.UserID,
	})
	return nil
}

// FindByTokenHash looks up a token by its stored hash. Expiry and usage
// checks are left to the caller so expired and used tokens can be told apart.
func (r *passwordResetRepository) FindByTokenHash(tokenHash string) (*model.PasswordResetToken, error) {
	logger.Debug("Finding password reset token by hash in database")

	var token model.PasswordResetToken
	if err := r.db.Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		logger.Error("Failed to find password reset token by hash in database", err, nil)
		return nil, err
	}

	return &token, nil
}

// DeleteUnusedByUserID removes unconsumed tokens for a user. Pass the
// surrounding transaction so sibling invalidation commits atomically with
// the operation that triggered it.
func (r *passwordResetRepository) DeleteUnusedByUserID(tx *gorm.DB, userID uint) error {
	db := tx
	if db == nil {
		db = r.db
	}

	result := db.Where("user_id = ? AND used = ?", userID, false).Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		logger.Error("Failed to delete unused password reset tokens from database", result.Error, map[string]interface{}{
			"user_id": userID,
		})
		return result.Error
	}

	logger.Debug("Unused password reset tokens deleted from database", map[string]interface{}{
		"user_id": userID,
		"count":   result.RowsAffected,
	})
	return nil
}

// ConsumeToken flips a token to used, guarded so only one caller can win.
// Returns false when the token was already consumed by a concurrent request.
func (r *passwordResetRepository) ConsumeToken(tx *gorm.DB, id uint) (bool, error) {
	db := tx
	if db == nil {
		db = r.db
	}

	now := time.Now()
	result := db.Model(&model.PasswordResetToken{}).
		Where("id = ? AND used = ?", id, false).
		Updates(map[string]interface{}{"used": true, "used_at": &now})
	if result.Error != nil {
		logger.Error("Failed to consume password reset token in database", result.Error, map[string]interface{}{
			"id": id,
		})
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *passwordResetRepository) DeleteExpired() (int64, error) {
	logger.Debug("Deleting expired password reset tokens from database")

	result := r.db.Where("expires_at < ?", time.Now()).Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		logger.Error("Failed to delete expired password reset tokens from database", result.Error, nil)
		return 0, result.Error
	}

	logger.Debug("Expired password reset tokens deleted from database", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
