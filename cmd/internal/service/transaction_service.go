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

type TransactionRepository interface {
	Create(ctx context.Context, txn *entity.FinancialTransaction) error
}

type CreateTransactionRequest struct {
	Type            string  `json:"transaction_type" validate:"required,oneof=income expense"`
	Description     string  `json:"description" validate:"required,notblank,max=500"`
	Amount          float64 `json:"amount" validate:"gt=0"`
	Category        string  `json:"category" validate:"max=100"`
	PaymentMethod   string  `json:"payment_method" validate:"required,oneof=cash transfer"`
	TransactionDate string  `json:"transaction_date" validate:"omitempty,isodate"`
}

type TransactionResponse struct {
	ID              int     `json:"id"`
	Type            string  `json:"transaction_type"`
	Description     string  `json:"description"`
	Amount          float64 `json:"amount"`
	Category        string  `json:"category"`
	PaymentMethod   string  `json:"payment_method"`
	Status          string  `json:"status"`
	TransactionDate string  `json:"transaction_date"`
	CreatedAt       string  `json:"created_at"`
}

type DefaultTransactionService struct {
	TransactionRepo TransactionRepository
	UserRepo        RoleDirectory
	Notifier        Notifier
	Validate        *validator.Validate
}

func NewTransactionService(txnRepo TransactionRepository, userRepo RoleDirectory, notifier Notifier, validate *validator.Validate) *DefaultTransactionService {
	return &DefaultTransactionService{TransactionRepo: txnRepo, UserRepo: userRepo, Notifier: notifier, Validate: validate}
}

// CreateTransaction books an income or expense. Entries made by the owner are approved
// immediately; receptionist entries wait for the owner, who is notified.
func (t *DefaultTransactionService) CreateTransaction(ctx context.Context, id *auth.Identity, req *CreateTransactionRequest) (*TransactionResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpTransactionCreate); apierr != nil {
		return nil, apierr
	}
	if apierr := sanitizeAndValidate(t.Validate, req); apierr != nil {
		return nil, apierr
	}

	amount := utils.RoundMoney(req.Amount)
	if amount <= 0 {
		return nil, apierror.NewInvalid("amount must be at least 0.01")
	}

	day := utils.Today()
	if req.TransactionDate != "" {
		day, _ = utils.ParseDate(req.TransactionDate)
	}

	status := entity.TransactionPending
	if id.Role == auth.RoleOwner {
		status = entity.TransactionApproved
	}

	now := utils.NowUTC()
	txn := &entity.FinancialTransaction{
		Type:            entity.TransactionType(req.Type),
		Description:     req.Description,
		Amount:          amount,
		Category:        req.Category,
		PaymentMethod:   entity.PaymentMethod(req.PaymentMethod),
		Status:          status,
		TransactionDate: datatypes.Date(day),
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       intPtr(id.UserID),
	}
	if err := t.TransactionRepo.Create(ctx, txn); err != nil {
		log.Errorf("failed to create financial transaction: %v", err)
		return nil, apierror.InternalServerError
	}

	if status == entity.TransactionPending {
		t.Notifier.FanOut(ctx, ownersOf(t.UserRepo), func(int) notify.Message {
			return notify.Message{
				Title:           "Transaction awaiting approval",
				Body:            fmt.Sprintf("A new %s of %.2f (%s) needs your approval", txn.Type, txn.Amount, txn.Description),
				Category:        "transaction",
				RelatedObjectID: intPtr(txn.ID),
				TargetURL:       "financial-transactions",
			}
		})
	}
	return toTransactionResponse(txn), nil
}

func toTransactionResponse(txn *entity.FinancialTransaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              txn.ID,
		Type:            string(txn.Type),
		Description:     txn.Description,
		Amount:          txn.Amount,
		Category:        txn.Category,
		PaymentMethod:   string(txn.PaymentMethod),
		Status:          txn.Status,
		TransactionDate: utils.FormatDate(time.Time(txn.TransactionDate)),
		CreatedAt:       utils.FormatEpoch(txn.CreatedAt),
	}
}
