package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"holasmile/cmd/internal/utils/apierror"
)

func pathID(c echo.Context, name string) (int, apierror.ErrorResponse) {
	raw := c.Param(name)
	if raw == "" {
		return 0, apierror.NewMissingParamError(name)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apierror.NewSimple(http.StatusBadRequest, "ID is not a number")
	}
	return id, nil
}

func fail(c echo.Context, apierr apierror.ErrorResponse) error {
	return c.JSON(apierr.Code(), apierr)
}
