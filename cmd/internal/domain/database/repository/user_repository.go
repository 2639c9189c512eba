package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"holasmile/cmd/internal/domain/entity"
)

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (u *DefaultUserRepository) FindByID(ctx context.Context, id int) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &user, err
}

func (u *DefaultUserRepository) FindByIDs(ctx context.Context, ids []int) ([]*entity.User, error) {
	var users []*entity.User
	if len(ids) == 0 {
		return users, nil
	}
	err := u.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// FindIDsByRole lists the ids of active users holding role.
func (u *DefaultUserRepository) FindIDsByRole(ctx context.Context, role string) ([]int, error) {
	var ids []int
	err := u.db.WithContext(ctx).Model(&entity.User{}).
		Where("role = ?", role).
		Where("status = ?", entity.UserActive).
		Order("id asc").
		Pluck("id", &ids).Error
	return ids, err
}

// UpdateUserStatus writes the status and update stamps. It reports false when no row matched.
func (u *DefaultUserRepository) UpdateUserStatus(ctx context.Context, user *entity.User) (bool, error) {
	res := u.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"status":     user.Status,
			"updated_at": user.UpdatedAt,
			"updated_by": user.UpdatedBy,
		})
	return res.RowsAffected > 0, res.Error
}

func (u *DefaultUserRepository) Save(ctx context.Context, user *entity.User) error {
	return translate(u.db.WithContext(ctx).Save(user).Error)
}
