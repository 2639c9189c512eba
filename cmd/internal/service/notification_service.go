package service

import (
	"context"

	"github.com/labstack/gommon/log"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/domain/entity"
	"holasmile/cmd/internal/utils"
	"holasmile/cmd/internal/utils/apierror"
)

type NotificationRepository interface {
	FindByUserID(ctx context.Context, userID int) ([]*entity.Notification, error)
	FindByID(ctx context.Context, id int) (*entity.Notification, error)
	CountUnread(ctx context.Context, userID int) (int64, error)
	MarkRead(ctx context.Context, id, userID int) (bool, error)
	MarkAllRead(ctx context.Context, userID int) (int64, error)
}

type NotificationResponse struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	Message         string `json:"message"`
	Type            string `json:"type"`
	IsRead          bool   `json:"is_read"`
	RelatedObjectID *int   `json:"related_object_id,omitempty"`
	MappingURL      string `json:"mapping_url"`
	CreatedAt       string `json:"created_at"`
}

type DefaultNotificationService struct {
	NotificationRepo NotificationRepository
}

func NewNotificationService(notificationRepo NotificationRepository) *DefaultNotificationService {
	return &DefaultNotificationService{NotificationRepo: notificationRepo}
}

func (n *DefaultNotificationService) GetNotifications(ctx context.Context, id *auth.Identity) ([]*NotificationResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpNotificationOwn); apierr != nil {
		return nil, apierr
	}

	notifications, err := n.NotificationRepo.FindByUserID(ctx, id.UserID)
	if err != nil {
		log.Errorf("failed to list notifications of user %d: %v", id.UserID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*NotificationResponse, len(notifications))
	for i, notification := range notifications {
		resp[i] = toNotificationResponse(notification)
	}
	return resp, nil
}

func (n *DefaultNotificationService) CountUnread(ctx context.Context, id *auth.Identity) (int64, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpNotificationOwn); apierr != nil {
		return 0, apierr
	}

	count, err := n.NotificationRepo.CountUnread(ctx, id.UserID)
	if err != nil {
		log.Errorf("failed to count unread notifications of user %d: %v", id.UserID, err)
		return 0, apierror.InternalServerError
	}
	return count, nil
}

// MarkAsRead answers NotFound for notifications addressed to someone else.
func (n *DefaultNotificationService) MarkAsRead(ctx context.Context, id *auth.Identity, notificationID int) apierror.ErrorResponse {
	if apierr := auth.Authorize(id, auth.OpNotificationOwn); apierr != nil {
		return apierr
	}
	if notificationID <= 0 {
		return apierror.NewInvalidParamTypeError("id", "positive integer")
	}

	notification, err := n.NotificationRepo.FindByID(ctx, notificationID)
	if err != nil {
		log.Errorf("failed to fetch notification %d: %v", notificationID, err)
		return apierror.InternalServerError
	}
	if notification == nil || notification.UserID != id.UserID {
		return apierror.NewNotFound("Notification")
	}

	marked, err := n.NotificationRepo.MarkRead(ctx, notification.ID, id.UserID)
	if err != nil || !marked {
		log.Errorf("failed to mark notification %d as read (marked=%t): %v", notification.ID, marked, err)
		return apierror.InternalServerError
	}
	return nil
}

func (n *DefaultNotificationService) MarkAllAsRead(ctx context.Context, id *auth.Identity) (int64, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpNotificationOwn); apierr != nil {
		return 0, apierr
	}

	count, err := n.NotificationRepo.MarkAllRead(ctx, id.UserID)
	if err != nil {
		log.Errorf("failed to mark notifications of user %d as read: %v", id.UserID, err)
		return 0, apierror.InternalServerError
	}
	return count, nil
}

func toNotificationResponse(notification *entity.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:              notification.ID,
		Title:           notification.Title,
		Message:         notification.Message,
		Type:            notification.Type,
		IsRead:          notification.IsRead,
		RelatedObjectID: notification.RelatedObjectID,
		MappingURL:      notification.MappingURL,
		CreatedAt:       utils.FormatEpoch(notification.CreatedAt),
	}
}
