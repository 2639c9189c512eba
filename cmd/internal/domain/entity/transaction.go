package entity

import "gorm.io/datatypes"

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

const (
	TransactionPending  = "pending"
	TransactionApproved = "approved"
)

type FinancialTransaction struct {
	ID              int             `gorm:"primaryKey"`
	Type            TransactionType `gorm:"size:16;not null"`
	Description     string          `gorm:"not null"`
	Amount          float64         `gorm:"type:decimal(14,2);not null"`
	Category        string          `gorm:"index"`
	PaymentMethod   PaymentMethod   `gorm:"size:16;not null"`
	Status          string          `gorm:"size:16;not null"`
	TransactionDate datatypes.Date  `gorm:"not null"`
	IsDeleted       bool            `gorm:"not null;default:false"`
	CreatedAt       int64           `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt       int64           `gorm:"autoUpdateTime:milli;not null"`
	CreatedBy       *int
	UpdatedBy       *int
}
