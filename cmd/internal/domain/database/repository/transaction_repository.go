package repository

import (
	"context"

	"gorm.io/gorm"

	"holasmile/cmd/internal/domain/entity"
)

type DefaultTransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *DefaultTransactionRepository {
	return &DefaultTransactionRepository{db: db}
}

func (t *DefaultTransactionRepository) Create(ctx context.Context, txn *entity.FinancialTransaction) error {
	return translate(t.db.WithContext(ctx).Create(txn).Error)
}

func (t *DefaultTransactionRepository) FindAll(ctx context.Context) ([]*entity.FinancialTransaction, error) {
	var txns []*entity.FinancialTransaction
	err := t.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("transaction_date desc, id desc").
		Find(&txns).Error
	return txns, err
}
