package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"holasmile/cmd/internal/domain/entity"
)

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

func (a *DefaultAppointmentRepository) FindByID(ctx context.Context, id int) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		First(&appt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &appt, err
}

func (a *DefaultAppointmentRepository) FindAll(ctx context.Context) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("appointment_date desc, appointment_time desc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) FindByPatientID(ctx context.Context, patientID int) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Where("patient_id = ? AND is_deleted = ?", patientID, false).
		Order("appointment_date desc, appointment_time desc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) FindByDentistID(ctx context.Context, dentistID int) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Where("dentist_id = ? AND is_deleted = ?", dentistID, false).
		Order("appointment_date desc, appointment_time desc").
		Find(&appts).Error
	return appts, err
}

// FindPatientUserID resolves the user account of the patient booked on an appointment.
// It returns 0 when the appointment or patient does not exist.
func (a *DefaultAppointmentRepository) FindPatientUserID(ctx context.Context, appointmentID int) (int, error) {
	var userIDs []int
	err := a.db.WithContext(ctx).
		Table("appointments").
		Joins("JOIN patients ON patients.id = appointments.patient_id").
		Where("appointments.id = ?", appointmentID).
		Limit(1).
		Pluck("patients.user_id", &userIDs).Error
	if err != nil || len(userIDs) == 0 {
		return 0, err
	}
	return userIDs[0], nil
}

func (a *DefaultAppointmentRepository) Save(ctx context.Context, appointment *entity.Appointment) error {
	return translate(a.db.WithContext(ctx).Save(appointment).Error)
}
