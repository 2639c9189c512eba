package repository

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"holasmile/cmd/internal/utils"
)

// ErrDuplicate is returned when a write collides with a unique index.
var ErrDuplicate = errors.New("duplicate record")

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

func dateOf(t time.Time) datatypes.Date {
	return datatypes.Date(utils.TruncateDay(t))
}
