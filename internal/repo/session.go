package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/vayez/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// UpsertSession replaces the account's refresh token. Concurrent callers
// race and the last write wins.
func (r *GormRepo) UpsertSession(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	session := models.SessionToken{
		ID:        uuid.New(),
		AccountID: accountID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt.Unix(),
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token_hash", "expires_at", "updated_at"}),
		}).
		Create(&session).Error
}

func (r *GormRepo) FindLiveSession(ctx context.Context, tokenHash string, now time.Time) (*models.SessionToken, error) {
	var session models.SessionToken
	if err := r.DB.WithContext(ctx).
		Where("token_hash = ? AND expires_at > ?", tokenHash, now.Unix()).
		First(&session).Error; err != nil {
		if IsNotFound(err) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &session, nil
}
