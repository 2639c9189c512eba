package routes

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/service"
	"holasmile/cmd/internal/utils/apierror"
)

type WarrantyService interface {
	EditWarranty(ctx context.Context, id *auth.Identity, req *service.EditWarrantyRequest) (*service.WarrantyResponse, apierror.ErrorResponse)
}

type PrescriptionService interface {
	CreatePrescription(ctx context.Context, id *auth.Identity, req *service.CreatePrescriptionRequest) (*service.PrescriptionResponse, apierror.ErrorResponse)
	EditPrescription(ctx context.Context, id *auth.Identity, req *service.EditPrescriptionRequest) (*service.PrescriptionResponse, apierror.ErrorResponse)
}

type TransactionService interface {
	CreateTransaction(ctx context.Context, id *auth.Identity, req *service.CreateTransactionRequest) (*service.TransactionResponse, apierror.ErrorResponse)
}

// DefaultClinicRoute serves the single-action clinical and financial endpoints.
type DefaultClinicRoute struct {
	WarrantyService     WarrantyService
	PrescriptionService PrescriptionService
	TransactionService  TransactionService
}

func NewClinicDefault(warranty WarrantyService, prescription PrescriptionService, txn TransactionService) *DefaultClinicRoute {
	return &DefaultClinicRoute{WarrantyService: warranty, PrescriptionService: prescription, TransactionService: txn}
}

func (r *DefaultClinicRoute) EditWarranty(c echo.Context) error {
	id, apierr := pathID(c, "id")
	if apierr != nil {
		return fail(c, apierr)
	}

	var req service.EditWarrantyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}
	req.WarrantyCardID = id

	card, apierr := r.WarrantyService.EditWarranty(c.Request().Context(), auth.FromContext(c), &req)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusOK, card)
}

func (r *DefaultClinicRoute) CreatePrescription(c echo.Context) error {
	var req service.CreatePrescriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	prescription, apierr := r.PrescriptionService.CreatePrescription(c.Request().Context(), auth.FromContext(c), &req)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusCreated, prescription)
}

func (r *DefaultClinicRoute) EditPrescription(c echo.Context) error {
	id, apierr := pathID(c, "id")
	if apierr != nil {
		return fail(c, apierr)
	}

	var req service.EditPrescriptionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}
	req.PrescriptionID = id

	prescription, apierr := r.PrescriptionService.EditPrescription(c.Request().Context(), auth.FromContext(c), &req)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusOK, prescription)
}

func (r *DefaultClinicRoute) CreateTransaction(c echo.Context) error {
	var req service.CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	txn, apierr := r.TransactionService.CreateTransaction(c.Request().Context(), auth.FromContext(c), &req)
	if apierr != nil {
		return fail(c, apierr)
	}
	return c.JSON(http.StatusCreated, txn)
}
