package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"holasmile/cmd/internal/domain/entity"
)

type DefaultWarrantyRepository struct {
	db *gorm.DB
}

func NewWarrantyRepository(db *gorm.DB) *DefaultWarrantyRepository {
	return &DefaultWarrantyRepository{db: db}
}

func (w *DefaultWarrantyRepository) FindByID(ctx context.Context, id int) (*entity.WarrantyCard, error) {
	var card entity.WarrantyCard
	err := w.db.WithContext(ctx).First(&card, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &card, err
}

// FindPatientUserID follows card -> treatment record -> appointment -> patient.
// It returns 0 when any link is missing.
func (w *DefaultWarrantyRepository) FindPatientUserID(ctx context.Context, cardID int) (int, error) {
	var userIDs []int
	err := w.db.WithContext(ctx).
		Table("warranty_cards").
		Joins("JOIN treatment_records ON treatment_records.id = warranty_cards.treatment_record_id").
		Joins("JOIN appointments ON appointments.id = treatment_records.appointment_id").
		Joins("JOIN patients ON patients.id = appointments.patient_id").
		Where("warranty_cards.id = ?", cardID).
		Limit(1).
		Pluck("patients.user_id", &userIDs).Error
	if err != nil || len(userIDs) == 0 {
		return 0, err
	}
	return userIDs[0], nil
}

func (w *DefaultWarrantyRepository) Update(ctx context.Context, card *entity.WarrantyCard) (bool, error) {
	res := w.db.WithContext(ctx).Model(&entity.WarrantyCard{}).
		Where("id = ?", card.ID).
		Updates(map[string]any{
			"duration":   card.Duration,
			"end_date":   card.EndDate,
			"status":     card.Status,
			"updated_at": card.UpdatedAt,
			"updated_by": card.UpdatedBy,
		})
	return res.RowsAffected > 0, res.Error
}

// ExpireEndedBefore marks active cards whose end date is before day as expired.
func (w *DefaultWarrantyRepository) ExpireEndedBefore(ctx context.Context, day time.Time, now int64) (int64, error) {
	res := w.db.WithContext(ctx).Model(&entity.WarrantyCard{}).
		Where("status = ?", entity.WarrantyActive).
		Where("end_date < ?", dateOf(day)).
		Updates(map[string]any{
			"status":     entity.WarrantyExpired,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

func (w *DefaultWarrantyRepository) Save(ctx context.Context, card *entity.WarrantyCard) error {
	return w.db.WithContext(ctx).Save(card).Error
}
