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

type WarrantyRepository interface {
	FindByID(ctx context.Context, id int) (*entity.WarrantyCard, error)
	FindPatientUserID(ctx context.Context, cardID int) (int, error)
	Update(ctx context.Context, card *entity.WarrantyCard) (bool, error)
}

type EditWarrantyRequest struct {
	WarrantyCardID int    `json:"warranty_card_id" validate:"gt=0"`
	Duration       int    `json:"duration" validate:"gt=0,max=600"`
	Status         string `json:"status" validate:"omitempty,oneof=active expired void"`
}

type WarrantyResponse struct {
	ID                int    `json:"id"`
	TreatmentRecordID int    `json:"treatment_record_id"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	Duration          int    `json:"duration"`
	Status            string `json:"status"`
	UpdatedAt         string `json:"updated_at"`
}

type DefaultWarrantyService struct {
	WarrantyRepo WarrantyRepository
	Notifier     Notifier
	Validate     *validator.Validate
}

func NewWarrantyService(warrantyRepo WarrantyRepository, notifier Notifier, validate *validator.Validate) *DefaultWarrantyService {
	return &DefaultWarrantyService{WarrantyRepo: warrantyRepo, Notifier: notifier, Validate: validate}
}

// EditWarranty changes the duration in months and recomputes the end date from the start date.
func (w *DefaultWarrantyService) EditWarranty(ctx context.Context, id *auth.Identity, req *EditWarrantyRequest) (*WarrantyResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpWarrantyEdit); apierr != nil {
		return nil, apierr
	}
	if apierr := sanitizeAndValidate(w.Validate, req); apierr != nil {
		return nil, apierr
	}

	card, err := w.WarrantyRepo.FindByID(ctx, req.WarrantyCardID)
	if err != nil {
		log.Errorf("failed to fetch warranty card %d: %v", req.WarrantyCardID, err)
		return nil, apierror.InternalServerError
	}
	if card == nil {
		return nil, apierror.NewNotFound("Warranty card")
	}

	card.Duration = req.Duration
	card.EndDate = datatypes.Date(utils.AddMonths(time.Time(card.StartDate), req.Duration))
	if req.Status != "" {
		card.Status = entity.WarrantyStatus(req.Status)
	}
	card.UpdatedAt = utils.NowUTC()
	card.UpdatedBy = intPtr(id.UserID)

	updated, err := w.WarrantyRepo.Update(ctx, card)
	if err != nil || !updated {
		log.Errorf("failed to update warranty card %d (updated=%t): %v", card.ID, updated, err)
		return nil, apierror.InternalServerError
	}

	patientOf := func(ctx context.Context) ([]int, error) {
		userID, err := w.WarrantyRepo.FindPatientUserID(ctx, card.ID)
		return []int{userID}, err
	}
	w.Notifier.FanOut(ctx, patientOf, func(int) notify.Message {
		return notify.Message{
			Title:           "Warranty updated",
			Body:            fmt.Sprintf("Your warranty card %d now lasts %d month(s), until %s", card.ID, card.Duration, utils.FormatDate(time.Time(card.EndDate))),
			Category:        "warranty",
			RelatedObjectID: intPtr(card.ID),
			TargetURL:       fmt.Sprintf("patient/warranty-cards/%d", card.ID),
		}
	})
	return toWarrantyResponse(card), nil
}

func toWarrantyResponse(card *entity.WarrantyCard) *WarrantyResponse {
	return &WarrantyResponse{
		ID:                card.ID,
		TreatmentRecordID: card.TreatmentRecordID,
		StartDate:         utils.FormatDate(time.Time(card.StartDate)),
		EndDate:           utils.FormatDate(time.Time(card.EndDate)),
		Duration:          card.Duration,
		Status:            string(card.Status),
		UpdatedAt:         utils.FormatEpoch(card.UpdatedAt),
	}
}
