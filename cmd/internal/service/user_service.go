package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/domain/entity"
	cognitoclient "holasmile/cmd/internal/integration/aws/cognito"
	"holasmile/cmd/internal/utils"
	"holasmile/cmd/internal/utils/apierror"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int) (*entity.User, error)
	FindIDsByRole(ctx context.Context, role string) ([]int, error)
	UpdateUserStatus(ctx context.Context, user *entity.User) (bool, error)
}

type BanUserRequest struct {
	UserID int `json:"user_id" validate:"gt=0"`
}

type UserResponse struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Fullname  string `json:"fullname"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type DefaultUserService struct {
	UserRepo UserRepository
	Validate *validator.Validate
	Cognito  cognitoclient.CognitoInterface
}

func NewUserService(userRepo UserRepository, validate *validator.Validate, cogClient cognitoclient.CognitoInterface) *DefaultUserService {
	return &DefaultUserService{UserRepo: userRepo, Validate: validate, Cognito: cogClient}
}

// BanUnbanUser flips a user between active and banned. The identity provider is told
// afterwards; if that call fails the local status still stands and the failure is logged.
func (u *DefaultUserService) BanUnbanUser(ctx context.Context, id *auth.Identity, req *BanUserRequest) (*UserResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpUserBan); apierr != nil {
		return nil, apierr
	}
	if apierr := sanitizeAndValidate(u.Validate, req); apierr != nil {
		return nil, apierr
	}

	user, err := u.UserRepo.FindByID(ctx, req.UserID)
	if err != nil {
		log.Errorf("failed to find user (%d) by id: %v", req.UserID, err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.NewNotFound("User")
	}
	if user.ID == id.UserID {
		return nil, apierror.NewInvalid("You cannot ban your own account")
	}

	if user.IsBanned() {
		user.Status = entity.UserActive
	} else {
		user.Status = entity.UserBanned
	}
	user.UpdatedAt = utils.NowUTC()
	user.UpdatedBy = intPtr(id.UserID)

	changed, err := u.UserRepo.UpdateUserStatus(ctx, user)
	if err != nil || !changed {
		log.Errorf("failed to update status of user %d (changed=%t): %v", user.ID, changed, err)
		return nil, apierror.InternalServerError
	}

	if err = u.Cognito.SetUserEnabled(context.WithoutCancel(ctx), user.Username, !user.IsBanned()); err != nil {
		log.Warnf("identity provider sync failed for user %d (%s): %v", user.ID, user.Username, err)
	}
	return toUserResponse(user), nil
}

func toUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Fullname:  user.Fullname,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		Status:    string(user.Status),
		CreatedAt: utils.FormatEpoch(user.CreatedAt),
		UpdatedAt: utils.FormatEpoch(user.UpdatedAt),
	}
}
