package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/service"
	"holasmile/cmd/internal/utils/apierror"
)

type NotificationService interface {
	GetNotifications(ctx context.Context, id *auth.Identity) ([]*service.NotificationResponse, apierror.ErrorResponse)
	CountUnread(ctx context.Context, id *auth.Identity) (int64, apierror.ErrorResponse)
	MarkAsRead(ctx context.Context, id *auth.Identity, notificationID int) apierror.ErrorResponse
	MarkAllAsRead(ctx context.Context, id *auth.Identity) (int64, apierror.ErrorResponse)
}

type DefaultNotificationRoute struct {
	NotificationService NotificationService
}

func NewNotificationDefault(notificationService NotificationService) *DefaultNotificationRoute {
	return &DefaultNotificationRoute{NotificationService: notificationService}
}

func (n *DefaultNotificationRoute) GetNotifications(c echo.Context) error {
	notifications, apierr := n.NotificationService.GetNotifications(c.Request().Context(), auth.FromContext(c))
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"notifications": notifications}
	return c.JSON(http.StatusOK, &resp)
}

func (n *DefaultNotificationRoute) GetUnreadCount(c echo.Context) error {
	count, apierr := n.NotificationService.CountUnread(c.Request().Context(), auth.FromContext(c))
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"unread": count}
	return c.JSON(http.StatusOK, &resp)
}

func (n *DefaultNotificationRoute) MarkAsRead(c echo.Context) error {
	id, apierr := pathID(c, "id")
	if apierr != nil {
		return fail(c, apierr)
	}

	if apierr = n.NotificationService.MarkAsRead(c.Request().Context(), auth.FromContext(c), id); apierr != nil {
		return fail(c, apierr)
	}
	return c.NoContent(http.StatusOK)
}

func (n *DefaultNotificationRoute) MarkAllAsRead(c echo.Context) error {
	count, apierr := n.NotificationService.MarkAllAsRead(c.Request().Context(), auth.FromContext(c))
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"marked": count}
	return c.JSON(http.StatusOK, &resp)
}
