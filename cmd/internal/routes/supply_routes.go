package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/service"
	"holasmile/cmd/internal/utils/apierror"
)

type SupplyService interface {
	CreateSupply(ctx context.Context, id *auth.Identity, req *service.SupplyRequest) (*service.SupplyResponse, apierror.ErrorResponse)
	EditSupply(ctx context.Context, id *auth.Identity, req *service.EditSupplyRequest) (*service.SupplyResponse, apierror.ErrorResponse)
	ToggleSupply(ctx context.Context, id *auth.Identity, supplyID int) (*service.SupplyResponse, apierror.ErrorResponse)
	ListSupplies(ctx context.Context, id *auth.Identity) ([]*service.SupplyResponse, apierror.ErrorResponse)
}

type DefaultSupplyRoute struct {
	SupplyService SupplyService
}

func NewSupplyDefault(supplyService SupplyService) *DefaultSupplyRoute {
	return &DefaultSupplyRoute{SupplyService: supplyService}
}

func (s *DefaultSupplyRoute) CreateSupply(c echo.Context) error {
	var req service.SupplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	supply, apierr := s.SupplyService.CreateSupply(c.Request().Context(), auth.FromContext(c), &req)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusCreated, supply)
}

func (s *DefaultSupplyRoute) EditSupply(c echo.Context) error {
	id, apierr := pathID(c, "id")
	if apierr != nil {
		return fail(c, apierr)
	}

	var req service.EditSupplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}
	req.SupplyID = id

	supply, apierr := s.SupplyService.EditSupply(c.Request().Context(), auth.FromContext(c), &req)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusOK, supply)
}

func (s *DefaultSupplyRoute) ToggleSupply(c echo.Context) error {
	id, apierr := pathID(c, "id")
	if apierr != nil {
		return fail(c, apierr)
	}

	supply, apierr := s.SupplyService.ToggleSupply(c.Request().Context(), auth.FromContext(c), id)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusOK, supply)
}

func (s *DefaultSupplyRoute) GetSupplies(c echo.Context) error {
	supplies, apierr := s.SupplyService.ListSupplies(c.Request().Context(), auth.FromContext(c))
	if apierr != nil {
		return fail(c, apierr)
	}

	resp := echo.Map{"supplies": supplies}
	return c.JSON(http.StatusOK, &resp)
}
