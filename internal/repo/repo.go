package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/vayez/internal/models"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken    = errors.New("email already in use")
	ErrTokenNotFound = errors.New("token not found or expired")
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(models.All()...)
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
