package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/service"
	"holasmile/cmd/internal/utils/apierror"
)

type ScheduleService interface {
	RegisterSchedules(ctx context.Context, id *auth.Identity, req *service.RegisterScheduleRequest) ([]*service.ScheduleResponse, apierror.ErrorResponse)
	EditSchedule(ctx context.Context, id *auth.Identity, req *service.EditScheduleRequest) (*service.ScheduleResponse, apierror.ErrorResponse)
	CancelSchedule(ctx context.Context, id *auth.Identity, scheduleID int) apierror.ErrorResponse
	ApproveSchedules(ctx context.Context, id *auth.Identity, req *service.ApproveScheduleRequest) ([]*service.ScheduleResponse, apierror.ErrorResponse)
	ListMySchedules(ctx context.Context, id *auth.Identity) ([]*service.ScheduleResponse, apierror.ErrorResponse)
}

type DefaultScheduleRoute struct {
	ScheduleService ScheduleService
}

func NewScheduleDefault(scheduleService ScheduleService) *DefaultScheduleRoute {
	return &DefaultScheduleRoute{ScheduleService: scheduleService}
}

func (s *DefaultScheduleRoute) RegisterSchedules(c echo.Context) error {
	var req service.RegisterScheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	schedules, apierr := s.ScheduleService.RegisterSchedules(c.Request().Context(), auth.FromContext(c), &req)
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"schedules": schedules}
	return c.JSON(http.StatusCreated, &resp)
}

func (s *DefaultScheduleRoute) EditSchedule(c echo.Context) error {
	id, apierr := pathID(c, "id")
	if apierr != nil {
		return fail(c, apierr)
	}

	var req service.EditScheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}
	req.ScheduleID = id

	schedule, apierr := s.ScheduleService.EditSchedule(c.Request().Context(), auth.FromContext(c), &req)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusOK, schedule)
}

func (s *DefaultScheduleRoute) CancelSchedule(c echo.Context) error {
	id, apierr := pathID(c, "id")
	if apierr != nil {
		return fail(c, apierr)
	}

	if apierr = s.ScheduleService.CancelSchedule(c.Request().Context(), auth.FromContext(c), id); apierr != nil {
		return fail(c, apierr)
	}
	return c.NoContent(http.StatusOK)
}

func (s *DefaultScheduleRoute) ApproveSchedules(c echo.Context) error {
	var req service.ApproveScheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	schedules, apierr := s.ScheduleService.ApproveSchedules(c.Request().Context(), auth.FromContext(c), &req)
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"schedules": schedules}
	return c.JSON(http.StatusOK, &resp)
}

func (s *DefaultScheduleRoute) ListMySchedules(c echo.Context) error {
	schedules, apierr := s.ScheduleService.ListMySchedules(c.Request().Context(), auth.FromContext(c))
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"schedules": schedules}
	return c.JSON(http.StatusOK, &resp)
}
