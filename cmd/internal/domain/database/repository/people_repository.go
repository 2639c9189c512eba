package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"holasmile/cmd/internal/domain/entity"
)

type DefaultDentistRepository struct {
	db *gorm.DB
}

func NewDentistRepository(db *gorm.DB) *DefaultDentistRepository {
	return &DefaultDentistRepository{db: db}
}

func (d *DefaultDentistRepository) FindByUserID(ctx context.Context, userID int) (*entity.Dentist, error) {
	var dentist entity.Dentist
	err := d.db.WithContext(ctx).Where("user_id = ?", userID).First(&dentist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &dentist, err
}

func (d *DefaultDentistRepository) FindByIDs(ctx context.Context, ids []int) ([]*entity.Dentist, error) {
	var dentists []*entity.Dentist
	if len(ids) == 0 {
		return dentists, nil
	}
	err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&dentists).Error
	return dentists, err
}

func (d *DefaultDentistRepository) Save(ctx context.Context, dentist *entity.Dentist) error {
	return translate(d.db.WithContext(ctx).Save(dentist).Error)
}

type DefaultPatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *DefaultPatientRepository {
	return &DefaultPatientRepository{db: db}
}

func (p *DefaultPatientRepository) FindByUserID(ctx context.Context, userID int) (*entity.Patient, error) {
	var patient entity.Patient
	err := p.db.WithContext(ctx).Where("user_id = ?", userID).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &patient, err
}

func (p *DefaultPatientRepository) Save(ctx context.Context, patient *entity.Patient) error {
	return translate(p.db.WithContext(ctx).Save(patient).Error)
}
