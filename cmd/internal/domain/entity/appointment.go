package entity

import "gorm.io/datatypes"

type Appointment struct {
	ID              int            `gorm:"primaryKey"`
	PatientID       int            `gorm:"index;not null"` // References: patients(id)
	DentistID       int            `gorm:"index;not null"` // References: dentists(id)
	AppointmentDate datatypes.Date `gorm:"not null"`
	AppointmentTime string         `gorm:"size:5;not null"`
	Content         string
	Status          string `gorm:"not null;default:confirmed"`
	IsDeleted       bool   `gorm:"not null;default:false"`
	CreatedAt       int64  `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt       int64  `gorm:"autoUpdateTime:milli;not null"`
	CreatedBy       *int
	UpdatedBy       *int
}
