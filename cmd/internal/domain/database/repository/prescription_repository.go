package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"holasmile/cmd/internal/domain/entity"
)

type DefaultPrescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) *DefaultPrescriptionRepository {
	return &DefaultPrescriptionRepository{db: db}
}

func (p *DefaultPrescriptionRepository) FindByID(ctx context.Context, id int) (*entity.Prescription, error) {
	var prescription entity.Prescription
	err := p.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		First(&prescription, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &prescription, err
}

func (p *DefaultPrescriptionRepository) FindByAppointmentID(ctx context.Context, appointmentID int) (*entity.Prescription, error) {
	var prescription entity.Prescription
	err := p.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		First(&prescription).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &prescription, err
}

func (p *DefaultPrescriptionRepository) Create(ctx context.Context, prescription *entity.Prescription) error {
	return translate(p.db.WithContext(ctx).Create(prescription).Error)
}

func (p *DefaultPrescriptionRepository) Update(ctx context.Context, prescription *entity.Prescription) (bool, error) {
	res := p.db.WithContext(ctx).Model(&entity.Prescription{}).
		Where("id = ?", prescription.ID).
		Updates(map[string]any{
			"content":    prescription.Content,
			"updated_at": prescription.UpdatedAt,
			"updated_by": prescription.UpdatedBy,
		})
	return res.RowsAffected > 0, res.Error
}
