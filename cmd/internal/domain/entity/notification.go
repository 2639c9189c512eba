package entity

type Notification struct {
	ID              int    `gorm:"primaryKey"`
	UserID          int    `gorm:"index;not null"` // References: users(id)
	Title           string `gorm:"not null"`
	Message         string `gorm:"not null"`
	Type            string `gorm:"size:32"`
	IsRead          bool   `gorm:"not null;default:false"`
	RelatedObjectID *int
	MappingURL      string
	CreatedAt       int64 `gorm:"autoCreateTime:milli;not null"`
}
