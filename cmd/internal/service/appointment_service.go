package service

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"

	"holasmile/cmd/internal/auth"
	"holasmile/cmd/internal/domain/entity"
	"holasmile/cmd/internal/utils"
	"holasmile/cmd/internal/utils/apierror"
)

type AppointmentRepository interface {
	FindByID(ctx context.Context, id int) (*entity.Appointment, error)
	FindAll(ctx context.Context) ([]*entity.Appointment, error)
	FindByPatientID(ctx context.Context, patientID int) ([]*entity.Appointment, error)
	FindByDentistID(ctx context.Context, dentistID int) ([]*entity.Appointment, error)
	FindPatientUserID(ctx context.Context, appointmentID int) (int, error)
}

type PatientRepository interface {
	FindByUserID(ctx context.Context, userID int) (*entity.Patient, error)
}

type AppointmentResponse struct {
	ID              int    `json:"id"`
	PatientID       int    `json:"patient_id"`
	DentistID       int    `json:"dentist_id"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Content         string `json:"content"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	PatientRepo     PatientRepository
	DentistRepo     DentistRepository
}

func NewAppointmentService(apptRepo AppointmentRepository, patientRepo PatientRepository, dentistRepo DentistRepository) *DefaultAppointmentService {
	return &DefaultAppointmentService{AppointmentRepo: apptRepo, PatientRepo: patientRepo, DentistRepo: dentistRepo}
}

// GetAppointments lists what the caller may see: patients and dentists their own, other staff everything.
func (a *DefaultAppointmentService) GetAppointments(ctx context.Context, id *auth.Identity) ([]*AppointmentResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpAppointmentView); apierr != nil {
		return nil, apierr
	}

	var (
		appts []*entity.Appointment
		err   error
	)
	switch id.Role {
	case auth.RolePatient:
		patient, apierr := a.callerPatient(ctx, id)
		if apierr != nil {
			return nil, apierr
		}
		appts, err = a.AppointmentRepo.FindByPatientID(ctx, patient.ID)
	case auth.RoleDentist:
		dentist, apierr := a.callerDentist(ctx, id)
		if apierr != nil {
			return nil, apierr
		}
		appts, err = a.AppointmentRepo.FindByDentistID(ctx, dentist.ID)
	default:
		appts, err = a.AppointmentRepo.FindAll(ctx)
	}
	if err != nil {
		log.Errorf("failed to find appointments for user %d: %v", id.UserID, err)
		return nil, apierror.InternalServerError
	}

	response := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		response[i] = toAppointmentResponse(appt)
	}
	return response, nil
}

// GetAppointment answers NotFound both for missing appointments and for ones the caller may not see.
func (a *DefaultAppointmentService) GetAppointment(ctx context.Context, id *auth.Identity, appointmentID int) (*AppointmentResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpAppointmentView); apierr != nil {
		return nil, apierr
	}
	if appointmentID <= 0 {
		return nil, apierror.NewInvalidParamTypeError("id", "positive integer")
	}

	appt, err := a.AppointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %d: %v", appointmentID, err)
		return nil, apierror.InternalServerError
	}
	if appt == nil {
		return nil, apierror.NewNotFound("Appointment")
	}

	switch id.Role {
	case auth.RolePatient:
		patient, apierr := a.callerPatient(ctx, id)
		if apierr != nil {
			return nil, apierr
		}
		if appt.PatientID != patient.ID {
			return nil, apierror.NewNotFound("Appointment")
		}
	case auth.RoleDentist:
		dentist, apierr := a.callerDentist(ctx, id)
		if apierr != nil {
			return nil, apierr
		}
		if appt.DentistID != dentist.ID {
			return nil, apierror.NewNotFound("Appointment")
		}
	}
	return toAppointmentResponse(appt), nil
}

func (a *DefaultAppointmentService) callerPatient(ctx context.Context, id *auth.Identity) (*entity.Patient, apierror.ErrorResponse) {
	patient, err := a.PatientRepo.FindByUserID(ctx, id.UserID)
	if err != nil {
		log.Errorf("failed to fetch patient profile of user %d: %v", id.UserID, err)
		return nil, apierror.InternalServerError
	}
	if patient == nil {
		return nil, apierror.NewNotFound("Patient profile")
	}
	return patient, nil
}

func (a *DefaultAppointmentService) callerDentist(ctx context.Context, id *auth.Identity) (*entity.Dentist, apierror.ErrorResponse) {
	dentist, err := a.DentistRepo.FindByUserID(ctx, id.UserID)
	if err != nil {
		log.Errorf("failed to fetch dentist profile of user %d: %v", id.UserID, err)
		return nil, apierror.InternalServerError
	}
	if dentist == nil {
		return nil, apierror.NewNotFound("Dentist profile")
	}
	return dentist, nil
}

func toAppointmentResponse(appt *entity.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:              appt.ID,
		PatientID:       appt.PatientID,
		DentistID:       appt.DentistID,
		AppointmentDate: utils.FormatDate(time.Time(appt.AppointmentDate)),
		AppointmentTime: appt.AppointmentTime,
		Content:         appt.Content,
		Status:          appt.Status,
		CreatedAt:       utils.FormatEpoch(appt.CreatedAt),
		UpdatedAt:       utils.FormatEpoch(appt.UpdatedAt),
	}
}
