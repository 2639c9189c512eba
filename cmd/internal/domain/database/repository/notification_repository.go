package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"holasmile/cmd/internal/domain/entity"
)

type DefaultNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *DefaultNotificationRepository {
	return &DefaultNotificationRepository{db: db}
}

func (n *DefaultNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return n.db.WithContext(ctx).Create(notification).Error
}

func (n *DefaultNotificationRepository) FindByUserID(ctx context.Context, userID int) ([]*entity.Notification, error) {
	var notifications []*entity.Notification
	err := n.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&notifications).Error
	return notifications, err
}

func (n *DefaultNotificationRepository) FindByID(ctx context.Context, id int) (*entity.Notification, error) {
	var notification entity.Notification
	err := n.db.WithContext(ctx).First(&notification, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &notification, err
}

func (n *DefaultNotificationRepository) CountUnread(ctx context.Context, userID int) (int64, error) {
	var count int64
	err := n.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (n *DefaultNotificationRepository) MarkRead(ctx context.Context, id, userID int) (bool, error) {
	res := n.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	return res.RowsAffected > 0, res.Error
}

func (n *DefaultNotificationRepository) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	res := n.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
