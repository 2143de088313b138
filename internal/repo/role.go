package repo

import (
	"context"

	"github.com/Skotchmaster/vayez/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) FindRoleByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *GormRepo) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *GormRepo) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles := make([]models.Role, 0)
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// EnsureRoles inserts the named roles that do not exist yet. Existing rows
// keep their ids.
func (r *GormRepo) EnsureRoles(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	roles := make([]models.Role, 0, len(names))
	for _, name := range names {
		roles = append(roles, models.Role{ID: uuid.New(), Name: name})
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&roles).Error
}
