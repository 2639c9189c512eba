package entity

import "gorm.io/datatypes"

type TreatmentRecord struct {
	ID            int `gorm:"primaryKey"`
	AppointmentID int `gorm:"index;not null"` // References: appointments(id)
	Diagnosis     string
	TreatmentDate datatypes.Date `gorm:"not null"`
	IsDeleted     bool           `gorm:"not null;default:false"`
	CreatedAt     int64          `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt     int64          `gorm:"autoUpdateTime:milli;not null"`
	CreatedBy     *int
	UpdatedBy     *int
}

type WarrantyStatus string

const (
	WarrantyActive  WarrantyStatus = "active"
	WarrantyExpired WarrantyStatus = "expired"
	WarrantyVoid    WarrantyStatus = "void"
)

type WarrantyCard struct {
	ID                int            `gorm:"primaryKey"`
	TreatmentRecordID int            `gorm:"index;not null"` // References: treatment_records(id)
	StartDate         datatypes.Date `gorm:"not null"`
	EndDate           datatypes.Date `gorm:"index;not null"`
	Duration          int            `gorm:"not null"` // months
	Status            WarrantyStatus `gorm:"size:16;not null;default:active"`
	CreatedAt         int64          `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt         int64          `gorm:"autoUpdateTime:milli;not null"`
	CreatedBy         *int
	UpdatedBy         *int
}

type Prescription struct {
	ID            int    `gorm:"primaryKey"`
	AppointmentID int    `gorm:"uniqueIndex;not null"` // References: appointments(id)
	Content       string `gorm:"not null"`
	IsDeleted     bool   `gorm:"not null;default:false"`
	CreatedAt     int64  `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt     int64  `gorm:"autoUpdateTime:milli;not null"`
	CreatedBy     *int
	UpdatedBy     *int
}
