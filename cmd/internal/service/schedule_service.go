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

type ScheduleRepository interface {
	FindByID(ctx context.Context, id int) (*entity.Schedule, error)
	FindByIDs(ctx context.Context, ids []int) ([]*entity.Schedule, error)
	FindByDentistID(ctx context.Context, dentistID int) ([]*entity.Schedule, error)
	CheckDuplicateSchedule(ctx context.Context, dentistID int, workDate time.Time, shift entity.Shift, excludeID int) (*entity.Schedule, error)
	CreateAll(ctx context.Context, evicted, created []*entity.Schedule) error
	Update(ctx context.Context, schedule *entity.Schedule, evicted *entity.Schedule) (bool, error)
	UpdateStatuses(ctx context.Context, schedules []*entity.Schedule) error
	SoftDelete(ctx context.Context, schedule *entity.Schedule) error
}

type DentistRepository interface {
	FindByUserID(ctx context.Context, userID int) (*entity.Dentist, error)
	FindByIDs(ctx context.Context, ids []int) ([]*entity.Dentist, error)
}

type ScheduleSlot struct {
	WorkDate string `json:"work_date" validate:"required,isodate,notpast"`
	Shift    string `json:"shift" validate:"required,oneof=morning afternoon evening"`
	Note     string `json:"note" validate:"max=255"`
}

type RegisterScheduleRequest struct {
	Slots []ScheduleSlot `json:"slots" validate:"required,min=1,max=62,dive"`
}

type EditScheduleRequest struct {
	ScheduleID int    `json:"schedule_id" validate:"gt=0"`
	WorkDate   string `json:"work_date" validate:"required,isodate,notpast"`
	Shift      string `json:"shift" validate:"required,oneof=morning afternoon evening"`
	Note       string `json:"note" validate:"max=255"`
}

type ApproveScheduleRequest struct {
	ScheduleIDs []int  `json:"schedule_ids" validate:"required,min=1,dive,gt=0"`
	Action      string `json:"action" validate:"required,oneof=approved rejected"`
}

type ScheduleResponse struct {
	ID        int    `json:"id"`
	DentistID int    `json:"dentist_id"`
	WorkDate  string `json:"work_date"`
	Shift     string `json:"shift"`
	Status    string `json:"status"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type DefaultScheduleService struct {
	ScheduleRepo ScheduleRepository
	DentistRepo  DentistRepository
	UserRepo     UserRepository
	Notifier     Notifier
	Validate     *validator.Validate
}

func NewScheduleService(scheduleRepo ScheduleRepository, dentistRepo DentistRepository, userRepo UserRepository, notifier Notifier, validate *validator.Validate) *DefaultScheduleService {
	return &DefaultScheduleService{
		ScheduleRepo: scheduleRepo,
		DentistRepo:  dentistRepo,
		UserRepo:     userRepo,
		Notifier:     notifier,
		Validate:     validate,
	}
}

// RegisterSchedules creates pending schedules for the calling dentist. Every slot is checked
// before anything is written; a rejected schedule in the way is soft-deleted, any other blocks.
func (s *DefaultScheduleService) RegisterSchedules(ctx context.Context, id *auth.Identity, req *RegisterScheduleRequest) ([]*ScheduleResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpScheduleRegister); apierr != nil {
		return nil, apierr
	}
	if apierr := sanitizeAndValidate(s.Validate, req); apierr != nil {
		return nil, apierr
	}

	dentist, apierr := s.callerDentist(ctx, id)
	if apierr != nil {
		return nil, apierr
	}

	now := utils.NowUTC()
	seen := make(map[string]struct{}, len(req.Slots))
	var evicted, created []*entity.Schedule
	for _, slot := range req.Slots {
		day, _ := utils.ParseDate(slot.WorkDate)
		shift := entity.Shift(slot.Shift)

		key := slot.WorkDate + "/" + slot.Shift
		if _, dup := seen[key]; dup {
			return nil, apierror.Newf(apierror.KindInvalidArgument, "Shift %s on %s is listed more than once", slot.Shift, slot.WorkDate)
		}
		seen[key] = struct{}{}

		existing, err := s.ScheduleRepo.CheckDuplicateSchedule(ctx, dentist.ID, day, shift, 0)
		if err != nil {
			log.Errorf("failed to check schedule duplicate for dentist %d: %v", dentist.ID, err)
			return nil, apierror.InternalServerError
		}
		if existing != nil {
			if existing.BlocksSlot() {
				return nil, apierror.Newf(apierror.KindConflict, "A schedule for the %s shift on %s already exists", slot.Shift, slot.WorkDate)
			}
			existing.UpdatedAt = now
			existing.UpdatedBy = intPtr(id.UserID)
			evicted = append(evicted, existing)
		}

		created = append(created, &entity.Schedule{
			DentistID: dentist.ID,
			WorkDate:  datatypes.Date(day),
			Shift:     shift,
			Status:    entity.SchedulePending,
			Note:      slot.Note,
			CreatedAt: now,
			UpdatedAt: now,
			CreatedBy: intPtr(id.UserID),
		})
	}

	if err := s.ScheduleRepo.CreateAll(ctx, evicted, created); err != nil {
		return nil, persistError(err, "A schedule for one of these shifts already exists",
			"failed to register schedules for dentist %d: %v", dentist.ID)
	}

	name := s.dentistName(ctx, id.UserID)
	s.Notifier.FanOut(ctx, ownersOf(s.UserRepo), func(int) notify.Message {
		return notify.Message{
			Title:     "Dentist schedule registered",
			Body:      fmt.Sprintf("Dentist %s registered %d new shift(s) awaiting approval", name, len(created)),
			Category:  "schedule",
			TargetURL: "schedules",
		}
	})

	resp := make([]*ScheduleResponse, len(created))
	for i, schedule := range created {
		resp[i] = toScheduleResponse(schedule)
	}
	return resp, nil
}

// EditSchedule moves one of the caller's pending schedules to another day or shift.
func (s *DefaultScheduleService) EditSchedule(ctx context.Context, id *auth.Identity, req *EditScheduleRequest) (*ScheduleResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpScheduleEdit); apierr != nil {
		return nil, apierr
	}
	if apierr := sanitizeAndValidate(s.Validate, req); apierr != nil {
		return nil, apierr
	}

	schedule, apierr := s.ownPendingSchedule(ctx, id, req.ScheduleID)
	if apierr != nil {
		return nil, apierr
	}

	day, _ := utils.ParseDate(req.WorkDate)
	shift := entity.Shift(req.Shift)

	existing, err := s.ScheduleRepo.CheckDuplicateSchedule(ctx, schedule.DentistID, day, shift, schedule.ID)
	if err != nil {
		log.Errorf("failed to check schedule duplicate for schedule %d: %v", schedule.ID, err)
		return nil, apierror.InternalServerError
	}

	now := utils.NowUTC()
	if existing != nil {
		if existing.BlocksSlot() {
			return nil, apierror.Newf(apierror.KindConflict, "A schedule for the %s shift on %s already exists", req.Shift, req.WorkDate)
		}
		existing.UpdatedAt = now
		existing.UpdatedBy = intPtr(id.UserID)
	}

	schedule.WorkDate = datatypes.Date(day)
	schedule.Shift = shift
	schedule.Note = req.Note
	schedule.UpdatedAt = now
	schedule.UpdatedBy = intPtr(id.UserID)

	updated, err := s.ScheduleRepo.Update(ctx, schedule, existing)
	if err != nil {
		return nil, persistError(err, "A schedule for this shift already exists",
			"failed to update schedule %d: %v", schedule.ID)
	}
	if !updated {
		log.Errorf("schedule %d was not updated", schedule.ID)
		return nil, apierror.InternalServerError
	}

	name := s.dentistName(ctx, id.UserID)
	s.Notifier.FanOut(ctx, ownersOf(s.UserRepo), func(int) notify.Message {
		return notify.Message{
			Title:           "Dentist schedule changed",
			Body:            fmt.Sprintf("Dentist %s moved schedule %d to the %s shift on %s", name, schedule.ID, req.Shift, req.WorkDate),
			Category:        "schedule",
			RelatedObjectID: intPtr(schedule.ID),
			TargetURL:       "schedules",
		}
	})
	return toScheduleResponse(schedule), nil
}

// CancelSchedule withdraws one of the caller's pending schedules.
func (s *DefaultScheduleService) CancelSchedule(ctx context.Context, id *auth.Identity, scheduleID int) apierror.ErrorResponse {
	if apierr := auth.Authorize(id, auth.OpScheduleCancel); apierr != nil {
		return apierr
	}
	if scheduleID <= 0 {
		return apierror.NewInvalid("schedule_id must be greater than 0")
	}

	schedule, apierr := s.ownPendingSchedule(ctx, id, scheduleID)
	if apierr != nil {
		return apierr
	}

	schedule.UpdatedAt = utils.NowUTC()
	schedule.UpdatedBy = intPtr(id.UserID)
	if err := s.ScheduleRepo.SoftDelete(ctx, schedule); err != nil {
		log.Errorf("failed to cancel schedule %d: %v", schedule.ID, err)
		return apierror.InternalServerError
	}

	name := s.dentistName(ctx, id.UserID)
	s.Notifier.FanOut(ctx, ownersOf(s.UserRepo), func(int) notify.Message {
		return notify.Message{
			Title:     "Dentist schedule cancelled",
			Body:      fmt.Sprintf("Dentist %s cancelled the %s shift on %s", name, schedule.Shift, utils.FormatDate(time.Time(schedule.WorkDate))),
			Category:  "schedule",
			TargetURL: "schedules",
		}
	})
	return nil
}

// ApproveSchedules approves or rejects pending schedules. Either every id is processed or none.
func (s *DefaultScheduleService) ApproveSchedules(ctx context.Context, id *auth.Identity, req *ApproveScheduleRequest) ([]*ScheduleResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpScheduleApprove); apierr != nil {
		return nil, apierr
	}
	if apierr := sanitizeAndValidate(s.Validate, req); apierr != nil {
		return nil, apierr
	}

	ids := uniqueInts(req.ScheduleIDs)
	schedules, err := s.ScheduleRepo.FindByIDs(ctx, ids)
	if err != nil {
		log.Errorf("failed to fetch schedules %v: %v", ids, err)
		return nil, apierror.InternalServerError
	}
	if len(schedules) != len(ids) {
		return nil, apierror.NewNotFound("Schedule")
	}

	now := utils.NowUTC()
	status := entity.ScheduleStatus(req.Action)
	for _, schedule := range schedules {
		if !schedule.IsPending() {
			return nil, apierror.Newf(apierror.KindConflict, "Schedule %d has already been %s", schedule.ID, schedule.Status)
		}
	}
	dentistIDs := make([]int, 0, len(schedules))
	for _, schedule := range schedules {
		schedule.Status = status
		schedule.UpdatedAt = now
		schedule.UpdatedBy = intPtr(id.UserID)
		dentistIDs = append(dentistIDs, schedule.DentistID)
	}

	if err = s.ScheduleRepo.UpdateStatuses(ctx, schedules); err != nil {
		log.Errorf("failed to update status of schedules %v: %v", ids, err)
		return nil, apierror.InternalServerError
	}

	audience := func(ctx context.Context) ([]int, error) {
		dentists, err := s.DentistRepo.FindByIDs(ctx, uniqueInts(dentistIDs))
		if err != nil {
			return nil, err
		}
		userIDs := make([]int, len(dentists))
		for i, d := range dentists {
			userIDs[i] = d.UserID
		}
		return userIDs, nil
	}
	s.Notifier.FanOut(ctx, audience, func(int) notify.Message {
		return notify.Message{
			Title:     "Schedule reviewed",
			Body:      fmt.Sprintf("The clinic owner has %s your pending schedule(s)", req.Action),
			Category:  "schedule",
			TargetURL: "schedules",
		}
	})

	resp := make([]*ScheduleResponse, len(schedules))
	for i, schedule := range schedules {
		resp[i] = toScheduleResponse(schedule)
	}
	return resp, nil
}

func (s *DefaultScheduleService) ListMySchedules(ctx context.Context, id *auth.Identity) ([]*ScheduleResponse, apierror.ErrorResponse) {
	if apierr := auth.Authorize(id, auth.OpScheduleListOwn); apierr != nil {
		return nil, apierr
	}

	dentist, apierr := s.callerDentist(ctx, id)
	if apierr != nil {
		return nil, apierr
	}

	schedules, err := s.ScheduleRepo.FindByDentistID(ctx, dentist.ID)
	if err != nil {
		log.Errorf("failed to list schedules of dentist %d: %v", dentist.ID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*ScheduleResponse, len(schedules))
	for i, schedule := range schedules {
		resp[i] = toScheduleResponse(schedule)
	}
	return resp, nil
}

func (s *DefaultScheduleService) callerDentist(ctx context.Context, id *auth.Identity) (*entity.Dentist, apierror.ErrorResponse) {
	dentist, err := s.DentistRepo.FindByUserID(ctx, id.UserID)
	if err != nil {
		log.Errorf("failed to fetch dentist profile of user %d: %v", id.UserID, err)
		return nil, apierror.InternalServerError
	}
	if dentist == nil {
		return nil, apierror.NewNotFound("Dentist profile")
	}
	return dentist, nil
}

// ownPendingSchedule loads a schedule the caller owns and may still change.
func (s *DefaultScheduleService) ownPendingSchedule(ctx context.Context, id *auth.Identity, scheduleID int) (*entity.Schedule, apierror.ErrorResponse) {
	schedule, err := s.ScheduleRepo.FindByID(ctx, scheduleID)
	if err != nil {
		log.Errorf("failed to fetch schedule %d: %v", scheduleID, err)
		return nil, apierror.InternalServerError
	}
	if schedule == nil {
		return nil, apierror.NewNotFound("Schedule")
	}

	dentist, apierr := s.callerDentist(ctx, id)
	if apierr != nil {
		return nil, apierr
	}
	if schedule.DentistID != dentist.ID {
		return nil, apierror.ForbiddenError
	}
	if !schedule.IsPending() {
		return nil, apierror.Newf(apierror.KindConflict, "Schedule %d is %s and can no longer be changed", schedule.ID, schedule.Status)
	}
	return schedule, nil
}

// dentistName is only used for notification text, so lookup failures fall back to a placeholder.
func (s *DefaultScheduleService) dentistName(ctx context.Context, userID int) string {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil || user == nil {
		if err != nil {
			log.Warnf("failed to fetch user %d for notification text: %v", userID, err)
		}
		return fmt.Sprintf("#%d", userID)
	}
	return user.Fullname
}

func uniqueInts(values []int) []int {
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func toScheduleResponse(schedule *entity.Schedule) *ScheduleResponse {
	return &ScheduleResponse{
		ID:        schedule.ID,
		DentistID: schedule.DentistID,
		WorkDate:  utils.FormatDate(time.Time(schedule.WorkDate)),
		Shift:     string(schedule.Shift),
		Status:    string(schedule.Status),
		Note:      schedule.Note,
		CreatedAt: utils.FormatEpoch(schedule.CreatedAt),
		UpdatedAt: utils.FormatEpoch(schedule.UpdatedAt),
	}
}
