package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/service"
	"holasmile/cmd/internal/utils/apierror"
)

type UserService interface {
	BanUnbanUser(ctx context.Context, id *auth.Identity, req *service.BanUserRequest) (*service.UserResponse, apierror.ErrorResponse)
}

type DefaultUserRoute struct {
	UserService UserService
}

func NewUserDefault(userService UserService) *DefaultUserRoute {
	return &DefaultUserRoute{UserService: userService}
}

func (u *DefaultUserRoute) BanUnbanUser(c echo.Context) error {
	id, apierr := pathID(c, "id")
	if apierr != nil {
		return fail(c, apierr)
	}

	user, apierr := u.UserService.BanUnbanUser(c.Request().Context(), auth.FromContext(c), &service.BanUserRequest{UserID: id})
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusOK, user)
}
