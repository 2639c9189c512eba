package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"holasmile/cmd/internal/domain/entity"
	"holasmile/cmd/internal/utils"
)

type DefaultSupplyRepository struct {
	db *gorm.DB
}

func NewSupplyRepository(db *gorm.DB) *DefaultSupplyRepository {
	return &DefaultSupplyRepository{db: db}
}

// FindByID returns the supply whether or not it is soft-deleted.
func (s *DefaultSupplyRepository) FindByID(ctx context.Context, id int) (*entity.Supply, error) {
	var supply entity.Supply
	err := s.db.WithContext(ctx).First(&supply, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &supply, err
}

func (s *DefaultSupplyRepository) FindActive(ctx context.Context) ([]*entity.Supply, error) {
	var supplies []*entity.Supply
	err := s.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("name asc, id asc").
		Find(&supplies).Error
	return supplies, err
}

// FindDuplicate looks up a live supply with the same name (ignoring case), price and expiry date.
func (s *DefaultSupplyRepository) FindDuplicate(ctx context.Context, name string, price float64, expiry *time.Time) (*entity.Supply, error) {
	var supply entity.Supply
	q := s.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		Where("price = ?", utils.RoundMoney(price)).
		Where("is_deleted = ?", false)
	if expiry == nil {
		q = q.Where("expiry_date IS NULL")
	} else {
		q = q.Where("expiry_date = ?", dateOf(*expiry))
	}

	err := q.Order("id asc").First(&supply).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &supply, err
}

// FindExpiringBetween lists live supplies whose expiry date falls in [from, to].
func (s *DefaultSupplyRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*entity.Supply, error) {
	var supplies []*entity.Supply
	err := s.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Where("expiry_date IS NOT NULL").
		Where("expiry_date >= ? AND expiry_date <= ?", dateOf(from), dateOf(to)).
		Order("expiry_date asc").
		Find(&supplies).Error
	return supplies, err
}

// CreateWithExpense records the purchase expense and the new supply atomically.
func (s *DefaultSupplyRepository) CreateWithExpense(ctx context.Context, supply *entity.Supply, expense *entity.FinancialTransaction) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(expense).Error; err != nil {
			return err
		}
		return tx.Create(supply).Error
	})
	return translate(err)
}

// Update writes every mutable column. It reports false when no row matched.
func (s *DefaultSupplyRepository) Update(ctx context.Context, supply *entity.Supply) (bool, error) {
	res := s.db.WithContext(ctx).Model(&entity.Supply{}).
		Where("id = ?", supply.ID).
		Updates(map[string]any{
			"name":              supply.Name,
			"unit":              supply.Unit,
			"quantity_in_stock": supply.QuantityInStock,
			"price":             supply.Price,
			"expiry_date":       supply.ExpiryDate,
			"is_deleted":        supply.IsDeleted,
			"updated_at":        supply.UpdatedAt,
			"updated_by":        supply.UpdatedBy,
		})
	return res.RowsAffected > 0, translate(res.Error)
}
