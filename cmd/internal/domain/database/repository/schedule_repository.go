package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"holasmile/cmd/internal/domain/entity"
)

type DefaultScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *DefaultScheduleRepository {
	return &DefaultScheduleRepository{db: db}
}

func (s *DefaultScheduleRepository) FindByID(ctx context.Context, id int) (*entity.Schedule, error) {
	var schedule entity.Schedule
	err := s.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		First(&schedule, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &schedule, err
}

func (s *DefaultScheduleRepository) FindByIDs(ctx context.Context, ids []int) ([]*entity.Schedule, error) {
	var schedules []*entity.Schedule
	if len(ids) == 0 {
		return schedules, nil
	}
	err := s.db.WithContext(ctx).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Order("id asc").
		Find(&schedules).Error
	return schedules, err
}

func (s *DefaultScheduleRepository) FindByDentistID(ctx context.Context, dentistID int) ([]*entity.Schedule, error) {
	var schedules []*entity.Schedule
	err := s.db.WithContext(ctx).
		Where("dentist_id = ? AND is_deleted = ?", dentistID, false).
		Order("work_date asc, shift asc").
		Find(&schedules).Error
	return schedules, err
}

// CheckDuplicateSchedule returns the live schedule occupying the dentist's slot, if any.
// excludeID skips the schedule being edited; pass 0 to consider every row.
func (s *DefaultScheduleRepository) CheckDuplicateSchedule(ctx context.Context, dentistID int, workDate time.Time, shift entity.Shift, excludeID int) (*entity.Schedule, error) {
	var schedule entity.Schedule
	q := s.db.WithContext(ctx).
		Where("dentist_id = ?", dentistID).
		Where("work_date = ?", dateOf(workDate)).
		Where("shift = ?", shift).
		Where("is_deleted = ?", false)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	err := q.First(&schedule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &schedule, err
}

// CreateAll soft-deletes the evicted schedules and inserts the new ones in one transaction.
func (s *DefaultScheduleRepository) CreateAll(ctx context.Context, evicted, created []*entity.Schedule) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := softDeleteSchedules(tx, evicted); err != nil {
			return err
		}
		if len(created) == 0 {
			return nil
		}
		return tx.Create(&created).Error
	})
	return translate(err)
}

// Update rewrites the slot of a schedule, soft-deleting evicted first when it is set.
// It reports false when the schedule row no longer exists.
func (s *DefaultScheduleRepository) Update(ctx context.Context, schedule *entity.Schedule, evicted *entity.Schedule) (bool, error) {
	var updated bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if evicted != nil {
			if err := softDeleteSchedules(tx, []*entity.Schedule{evicted}); err != nil {
				return err
			}
		}

		res := tx.Model(&entity.Schedule{}).
			Where("id = ? AND is_deleted = ?", schedule.ID, false).
			Updates(map[string]any{
				"work_date":  schedule.WorkDate,
				"shift":      schedule.Shift,
				"status":     schedule.Status,
				"note":       schedule.Note,
				"updated_at": schedule.UpdatedAt,
				"updated_by": schedule.UpdatedBy,
			})
		if res.Error != nil {
			return res.Error
		}
		updated = res.RowsAffected > 0
		if !updated {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return updated, translate(err)
}

// UpdateStatuses writes status and stamps of every schedule atomically.
func (s *DefaultScheduleRepository) UpdateStatuses(ctx context.Context, schedules []*entity.Schedule) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, schedule := range schedules {
			err := tx.Model(&entity.Schedule{}).
				Where("id = ?", schedule.ID).
				Updates(map[string]any{
					"status":     schedule.Status,
					"updated_at": schedule.UpdatedAt,
					"updated_by": schedule.UpdatedBy,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *DefaultScheduleRepository) SoftDelete(ctx context.Context, schedule *entity.Schedule) error {
	return softDeleteSchedules(s.db.WithContext(ctx), []*entity.Schedule{schedule})
}

func softDeleteSchedules(tx *gorm.DB, schedules []*entity.Schedule) error {
	for _, schedule := range schedules {
		schedule.IsDeleted = true
		err := tx.Model(&entity.Schedule{}).
			Where("id = ?", schedule.ID).
			Updates(map[string]any{
				"is_deleted": true,
				"updated_at": schedule.UpdatedAt,
				"updated_by": schedule.UpdatedBy,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
