package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/service"
	"holasmile/cmd/internal/utils/apierror"
)

type AppointmentService interface {
	GetAppointments(ctx context.Context, id *auth.Identity) ([]*service.AppointmentResponse, apierror.ErrorResponse)
	GetAppointment(ctx context.Context, id *auth.Identity, appointmentID int) (*service.AppointmentResponse, apierror.ErrorResponse)
}

type DefaultAppointmentRoute struct {
	AppointmentService AppointmentService
}

func NewAppointmentDefault(apptService AppointmentService) *DefaultAppointmentRoute {
	return &DefaultAppointmentRoute{AppointmentService: apptService}
}

func (a *DefaultAppointmentRoute) GetAppointments(c echo.Context) error {
	appts, apierr := a.AppointmentService.GetAppointments(c.Request().Context(), auth.FromContext(c))
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"appointments": appts}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultAppointmentRoute) GetAppointment(c echo.Context) error {
	id, apierr := pathID(c, "id")
	if apierr != nil {
		return fail(c, apierr)
	}

	appt, apierr := a.AppointmentService.GetAppointment(c.Request().Context(), auth.FromContext(c), id)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusOK, appt)
}
