package entity

type UserStatus string

const (
	UserActive UserStatus = "active"
	UserBanned UserStatus = "banned"
)

type User struct {
	ID        int    `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;not null"`
	Fullname  string `gorm:"not null"`
	Email     string `gorm:"index"`
	Phone     string
	Role      string     `gorm:"index;not null"`
	Status    UserStatus `gorm:"not null;default:active"`
	CreatedAt int64      `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt int64      `gorm:"autoUpdateTime:milli;not null"`
	CreatedBy *int
	UpdatedBy *int
}

func (u *User) IsBanned() bool {
	return u.Status == UserBanned
}

type Dentist struct {
	ID     int `gorm:"primaryKey"`
	UserID int `gorm:"uniqueIndex;not null"` // References: users(id)
}

type Patient struct {
	ID     int `gorm:"primaryKey"`
	UserID int `gorm:"uniqueIndex;not null"` // References: users(id)
}
