package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/domain/database/repository"
	"holasmile/cmd/internal/notify"
	"holasmile/cmd/internal/utils"
	"holasmile/cmd/internal/utils/apierror"
)

// Notifier delivers best-effort notifications. FanOut never fails.
type Notifier interface {
	FanOut(ctx context.Context, audience notify.AudienceFunc, build func(userID int) notify.Message) notify.Report
}

type RoleDirectory interface {
	FindIDsByRole(ctx context.Context, role string) ([]int, error)
}

func ownersOf(users RoleDirectory) notify.AudienceFunc {
	return func(ctx context.Context) ([]int, error) {
		return users.FindIDsByRole(ctx, auth.RoleOwner.String())
	}
}

func sanitizeAndValidate(validate *validator.Validate, req any) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}
	return nil
}

// persistError maps a failed write: unique violations become Conflict, everything else Internal.
func persistError(err error, conflict string, format string, args ...any) apierror.ErrorResponse {
	if errors.Is(err, repository.ErrDuplicate) {
		return apierror.NewConflict(conflict)
	}
	log.Errorf(format, append(args, err)...)
	return apierror.InternalServerError
}

func intPtr(v int) *int {
	return &v
}
