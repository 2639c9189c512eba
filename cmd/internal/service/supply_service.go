package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"gorm.io/datatypes"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/domain/entity"
	"holasmile/cmd/internal/notify"
	"holasmile/cmd/internal/utils"
	"holasmile/cmd/internal/utils/apierror"
)

const supplyExpenseCategory = "medical supplies"

type SupplyRepository interface {
	FindByID(ctx context.Context, id int) (*entity.Supply, error)
	FindActive(ctx context.Context) ([]*entity.Supply, error)
	FindDuplicate(ctx context.Context, name string, price float64, expiry *time.Time) (*entity.Supply, error)
	CreateWithExpense(ctx context.Context, supply *entity.Supply, expense *entity.FinancialTransaction) error
	Update(ctx context.Context, supply *entity.Supply) (bool, error)
}

type SupplyRequest struct {
	Name       string  `json:"supply_name" validate:"required,notblank,max=255"`
	Unit       string  `json:"unit" validate:"required,notblank,max=32"`
	Quantity   int     `json:"quantity_in_stock" validate:"gt=0"`
	Price      float64 `json:"price" validate:"gt=0"`
	ExpiryDate string  `json:"expiry_date" validate:"omitempty,isodate,notpast"`
}

type EditSupplyRequest struct {
	SupplyID int `json:"supply_id" validate:"gt=0"`
	SupplyRequest
}

type SupplyResponse struct {
	ID              int     `json:"id"`
	Name            string  `json:"supply_name"`
	Unit            string  `json:"unit"`
	QuantityInStock int     `json:"quantity_in_stock"`
	Price           float64 `json:"price"`
	ExpiryDate      string  `json:"expiry_date,omitempty"`
	IsDeleted       bool    `json:"is_deleted"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type DefaultSupplyService struct {
	SupplyRepo SupplyRepository
	UserRepo   RoleDirectory
	Notifier   Notifier
	Validate   *validator.Validate
}

func NewSupplyService(supplyRepo SupplyRepository, userRepo RoleDirectory, notifier Notifier, validate *validator.Validate) *DefaultSupplyService {
	return &DefaultSupplyService{SupplyRepo: supplyRepo, UserRepo: userRepo, Notifier: notifier, Validate: validate}
}

// CreateSupply records a stock intake. A live supply with the same name, price and expiry
// absorbs the quantity. Otherwise the purchase is booked as an expense and a new supply is added.
func (s *DefaultSupplyService) CreateSupply(ctx context.Context, id *auth.Identity, req *SupplyRequest) (*SupplyResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpSupplyCreate); apierr != nil {
		return nil, apierr
	}
	if apierr := sanitizeAndValidate(s.Validate, req); apierr != nil {
		return nil, apierr
	}

	price := utils.RoundMoney(req.Price)
	if price <= 0 {
		return nil, apierror.NewInvalid("price must be at least 0.01")
	}
	expiry := parseOptionalDate(req.ExpiryDate)
	now := utils.NowUTC()

	existing, err := s.SupplyRepo.FindDuplicate(ctx, req.Name, price, expiry)
	if err != nil {
		log.Errorf("failed to look up supply %q: %v", req.Name, err)
		return nil, apierror.InternalServerError
	}

	if existing != nil {
		existing.QuantityInStock += req.Quantity
		existing.UpdatedAt = now
		existing.UpdatedBy = intPtr(id.UserID)

		updated, err := s.SupplyRepo.Update(ctx, existing)
		if err != nil || !updated {
			log.Errorf("failed to restock supply %d (updated=%t): %v", existing.ID, updated, err)
			return nil, apierror.InternalServerError
		}
		return toSupplyResponse(existing), nil
	}

	supply := &entity.Supply{
		Name:            req.Name,
		Unit:            req.Unit,
		QuantityInStock: req.Quantity,
		Price:           price,
		ExpiryDate:      toDatePtr(expiry),
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       intPtr(id.UserID),
	}
	expense := &entity.FinancialTransaction{
		Type:            entity.TransactionExpense,
		Description:     fmt.Sprintf("Stock intake of supply: %s", req.Name),
		Amount:          utils.RoundMoney(price * float64(req.Quantity)),
		Category:        supplyExpenseCategory,
		PaymentMethod:   entity.PaymentCash,
		Status:          entity.TransactionApproved,
		TransactionDate: datatypes.Date(utils.Today()),
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       intPtr(id.UserID),
	}

	if err = s.SupplyRepo.CreateWithExpense(ctx, supply, expense); err != nil {
		return nil, persistError(err, "This supply already exists", "failed to create supply %q: %v", req.Name)
	}

	s.Notifier.FanOut(ctx, ownersOf(s.UserRepo), func(int) notify.Message {
		return notify.Message{
			Title:           "Supply intake",
			Body:            fmt.Sprintf("New supply %s (%d %s) was added to stock", supply.Name, supply.QuantityInStock, supply.Unit),
			Category:        "supply",
			RelatedObjectID: intPtr(supply.ID),
			TargetURL:       "supplies",
		}
	})
	return toSupplyResponse(supply), nil
}

func (s *DefaultSupplyService) EditSupply(ctx context.Context, id *auth.Identity, req *EditSupplyRequest) (*SupplyResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpSupplyEdit); apierr != nil {
		return nil, apierr
	}
	if apierr := sanitizeAndValidate(s.Validate, req); apierr != nil {
		return nil, apierr
	}

	supply, apierr := s.findSupply(ctx, req.SupplyID)
	if apierr != nil {
		return nil, apierr
	}

	price := utils.RoundMoney(req.Price)
	if price <= 0 {
		return nil, apierror.NewInvalid("price must be at least 0.01")
	}

	supply.Name = req.Name
	supply.Unit = req.Unit
	supply.QuantityInStock = req.Quantity
	supply.Price = price
	supply.ExpiryDate = toDatePtr(parseOptionalDate(req.ExpiryDate))
	supply.UpdatedAt = utils.NowUTC()
	supply.UpdatedBy = intPtr(id.UserID)

	return s.update(ctx, supply)
}

// ToggleSupply soft-deletes a live supply or restores a deleted one.
func (s *DefaultSupplyService) ToggleSupply(ctx context.Context, id *auth.Identity, supplyID int) (*SupplyResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpSupplyToggle); apierr != nil {
		return nil, apierr
	}
	if supplyID <= 0 {
		return nil, apierror.NewInvalid("supply_id must be greater than 0")
	}

	supply, apierr := s.findSupply(ctx, supplyID)
	if apierr != nil {
		return nil, apierr
	}

	supply.IsDeleted = !supply.IsDeleted
	supply.UpdatedAt = utils.NowUTC()
	supply.UpdatedBy = intPtr(id.UserID)
	return s.update(ctx, supply)
}

func (s *DefaultSupplyService) ListSupplies(ctx context.Context, id *auth.Identity) ([]*SupplyResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpSupplyView); apierr != nil {
		return nil, apierr
	}

	supplies, err := s.SupplyRepo.FindActive(ctx)
	if err != nil {
		log.Errorf("failed to list supplies: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*SupplyResponse, len(supplies))
	for i, supply := range supplies {
		resp[i] = toSupplyResponse(supply)
	}
	return resp, nil
}

func (s *DefaultSupplyService) findSupply(ctx context.Context, supplyID int) (*entity.Supply, apierror.ErrorResponse) {
	supply, err := s.SupplyRepo.FindByID(ctx, supplyID)
	if err != nil {
		log.Errorf("failed to fetch supply %d: %v", supplyID, err)
		return nil, apierror.InternalServerError
	}
	if supply == nil {
		return nil, apierror.NewNotFound("Supply")
	}
	return supply, nil
}

func (s *DefaultSupplyService) update(ctx context.Context, supply *entity.Supply) (*SupplyResponse, apierror.ErrorResponse) {
	updated, err := s.SupplyRepo.Update(ctx, supply)
	if err != nil {
		return nil, persistError(err, "This supply already exists", "failed to update supply %d: %v", supply.ID)
	}
	if !updated {
		log.Errorf("supply %d was not updated", supply.ID)
		return nil, apierror.InternalServerError
	}
	return toSupplyResponse(supply), nil
}

func parseOptionalDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	day, err := utils.ParseDate(raw)
	if err != nil {
		return nil
	}
	return &day
}

func toDatePtr(t *time.Time) *datatypes.Date {
	if t == nil {
		return nil
	}
	d := datatypes.Date(utils.TruncateDay(*t))
	return &d
}

func formatDatePtr(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return utils.FormatDate(time.Time(*d))
}

func toSupplyResponse(supply *entity.Supply) *SupplyResponse {
	return &SupplyResponse{
		ID:              supply.ID,
		Name:            supply.Name,
		Unit:            supply.Unit,
		QuantityInStock: supply.QuantityInStock,
		Price:           supply.Price,
		ExpiryDate:      formatDatePtr(supply.ExpiryDate),
		IsDeleted:       supply.IsDeleted,
		CreatedAt:       utils.FormatEpoch(supply.CreatedAt),
		UpdatedAt:       utils.FormatEpoch(supply.UpdatedAt),
	}
}
