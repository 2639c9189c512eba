package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/domain/entity"
	"holasmile/cmd/internal/notify"
	"holasmile/cmd/internal/utils"
	"holasmile/cmd/internal/utils/apierror"
)

type PrescriptionRepository interface {
	FindByID(ctx context.Context, id int) (*entity.Prescription, error)
	FindByAppointmentID(ctx context.Context, appointmentID int) (*entity.Prescription, error)
	Create(ctx context.Context, prescription *entity.Prescription) error
	Update(ctx context.Context, prescription *entity.Prescription) (bool, error)
}

type CreatePrescriptionRequest struct {
	AppointmentID int    `json:"appointment_id" validate:"gt=0"`
	Content       string `json:"contents" validate:"required,notblank,max=4000"`
}

type EditPrescriptionRequest struct {
	PrescriptionID int    `json:"prescription_id" validate:"gt=0"`
	Content        string `json:"contents" validate:"required,notblank,max=4000"`
}

type PrescriptionResponse struct {
	ID            int    `json:"id"`
	AppointmentID int    `json:"appointment_id"`
	Content       string `json:"contents"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type DefaultPrescriptionService struct {
	PrescriptionRepo PrescriptionRepository
	AppointmentRepo  AppointmentRepository
	Notifier         Notifier
	Validate         *validator.Validate
}

func NewPrescriptionService(prescriptionRepo PrescriptionRepository, apptRepo AppointmentRepository, notifier Notifier, validate *validator.Validate) *DefaultPrescriptionService {
	return &DefaultPrescriptionService{
		PrescriptionRepo: prescriptionRepo,
		AppointmentRepo:  apptRepo,
		Notifier:         notifier,
		Validate:         validate,
	}
}

// CreatePrescription attaches the single prescription an appointment may have.
func (p *DefaultPrescriptionService) CreatePrescription(ctx context.Context, id *auth.Identity, req *CreatePrescriptionRequest) (*PrescriptionResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpPrescriptionWrite); apierr != nil {
		return nil, apierr
	}
	if apierr := sanitizeAndValidate(p.Validate, req); apierr != nil {
		return nil, apierr
	}

	appt, err := p.AppointmentRepo.FindByID(ctx, req.AppointmentID)
	if err != nil {
		log.Errorf("failed to fetch appointment %d: %v", req.AppointmentID, err)
		return nil, apierror.InternalServerError
	}
	if appt == nil {
		return nil, apierror.NewNotFound("Appointment")
	}

	existing, err := p.PrescriptionRepo.FindByAppointmentID(ctx, appt.ID)
	if err != nil {
		log.Errorf("failed to fetch prescription of appointment %d: %v", appt.ID, err)
		return nil, apierror.InternalServerError
	}
	if existing != nil {
		return nil, apierror.NewConflict("This appointment already has a prescription")
	}

	now := utils.NowUTC()
	prescription := &entity.Prescription{
		AppointmentID: appt.ID,
		Content:       req.Content,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     intPtr(id.UserID),
	}
	if err = p.PrescriptionRepo.Create(ctx, prescription); err != nil {
		return nil, persistError(err, "This appointment already has a prescription",
			"failed to create prescription for appointment %d: %v", appt.ID)
	}

	p.notifyPatient(ctx, prescription, "New prescription",
		fmt.Sprintf("Your dentist added a prescription to appointment %d", appt.ID))
	return toPrescriptionResponse(prescription), nil
}

func (p *DefaultPrescriptionService) EditPrescription(ctx context.Context, id *auth.Identity, req *EditPrescriptionRequest) (*PrescriptionResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpPrescriptionWrite); apierr != nil {
		return nil, apierr
	}
	if apierr := sanitizeAndValidate(p.Validate, req); apierr != nil {
		return nil, apierr
	}

	prescription, err := p.PrescriptionRepo.FindByID(ctx, req.PrescriptionID)
	if err != nil {
		log.Errorf("failed to fetch prescription %d: %v", req.PrescriptionID, err)
		return nil, apierror.InternalServerError
	}
	if prescription == nil {
		return nil, apierror.NewNotFound("Prescription")
	}

	prescription.Content = req.Content
	prescription.UpdatedAt = utils.NowUTC()
	prescription.UpdatedBy = intPtr(id.UserID)

	updated, err := p.PrescriptionRepo.Update(ctx, prescription)
	if err != nil || !updated {
		log.Errorf("failed to update prescription %d (updated=%t): %v", prescription.ID, updated, err)
		return nil, apierror.InternalServerError
	}

	p.notifyPatient(ctx, prescription, "Prescription changed",
		fmt.Sprintf("Your dentist changed prescription %d", prescription.ID))
	return toPrescriptionResponse(prescription), nil
}

func (p *DefaultPrescriptionService) notifyPatient(ctx context.Context, prescription *entity.Prescription, title, body string) {
	patientOf := func(ctx context.Context) ([]int, error) {
		userID, err := p.AppointmentRepo.FindPatientUserID(ctx, prescription.AppointmentID)
		return []int{userID}, err
	}
	p.Notifier.FanOut(ctx, patientOf, func(int) notify.Message {
		return notify.Message{
			Title:           title,
			Body:            body,
			Category:        "prescription",
			RelatedObjectID: intPtr(prescription.ID),
			TargetURL:       fmt.Sprintf("patient/appointments/%d", prescription.AppointmentID),
		}
	})
}

func toPrescriptionResponse(prescription *entity.Prescription) *PrescriptionResponse {
	return &PrescriptionResponse{
		ID:            prescription.ID,
		AppointmentID: prescription.AppointmentID,
		Content:       prescription.Content,
		CreatedAt:     utils.FormatEpoch(prescription.CreatedAt),
		UpdatedAt:     utils.FormatEpoch(prescription.UpdatedAt),
	}
}
