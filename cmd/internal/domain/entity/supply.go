package entity

import "gorm.io/datatypes"

type Supply struct {
	ID              int     `gorm:"primaryKey"`
	Name            string  `gorm:"index;not null"`
	Unit            string  `gorm:"not null"`
	QuantityInStock int     `gorm:"not null"`
	Price           float64 `gorm:"type:decimal(12,2);not null"`
	ExpiryDate      *datatypes.Date
	IsDeleted       bool  `gorm:"not null;default:false"`
	CreatedAt       int64 `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt       int64 `gorm:"autoUpdateTime:milli;not null"`
	CreatedBy       *int
	UpdatedBy       *int
}
