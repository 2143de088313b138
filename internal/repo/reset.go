package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/vayez/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *GormRepo) SaveReset(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	token := models.ResetToken{
		ID:        uuid.New(),
		AccountID: accountID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt.Unix(),
	}
	return r.DB.WithContext(ctx).Create(&token).Error
}

// ConsumeReset deletes the live reset token with the given hash and returns
// its owner. The delete's row count decides between concurrent redeemers.
func (r *GormRepo) ConsumeReset(ctx context.Context, tokenHash string, now time.Time) (uuid.UUID, error) {
	var accountID uuid.UUID
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var token models.ResetToken
		if err := tx.Where("token_hash = ? AND expires_at > ?", tokenHash, now.Unix()).
			First(&token).Error; err != nil {
			if IsNotFound(err) {
				return ErrTokenNotFound
			}
			return err
		}

		res := tx.Where("id = ?", token.ID).Delete(&models.ResetToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTokenNotFound
		}

		accountID = token.AccountID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return accountID, nil
}
