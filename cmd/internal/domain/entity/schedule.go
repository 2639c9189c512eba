package entity

import "gorm.io/datatypes"

type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
	ShiftEvening   Shift = "evening"
)

type ScheduleStatus string

const (
	SchedulePending  ScheduleStatus = "pending"
	ScheduleApproved ScheduleStatus = "approved"
	ScheduleRejected ScheduleStatus = "rejected"
)

// Schedule is a dentist's request to work one shift on one day.
// At most one live (not soft-deleted) row exists per dentist, day and shift.
type Schedule struct {
	ID        int            `gorm:"primaryKey"`
	DentistID int            `gorm:"not null;uniqueIndex:idx_schedule_slot,where:is_deleted = false"` // References: dentists(id)
	WorkDate  datatypes.Date `gorm:"not null;uniqueIndex:idx_schedule_slot,where:is_deleted = false"`
	Shift     Shift          `gorm:"size:16;not null;uniqueIndex:idx_schedule_slot,where:is_deleted = false"`
	Status    ScheduleStatus `gorm:"size:16;not null;default:pending"`
	Note      string
	IsDeleted bool  `gorm:"not null;default:false"`
	CreatedAt int64 `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt int64 `gorm:"autoUpdateTime:milli;not null"`
	CreatedBy *int
	UpdatedBy *int
}

func (s *Schedule) IsPending() bool {
	return s.Status == SchedulePending
}

// BlocksSlot reports whether the schedule keeps others from taking its slot.
func (s *Schedule) BlocksSlot() bool {
	return !s.IsDeleted && (s.Status == SchedulePending || s.Status == ScheduleApproved)
}
