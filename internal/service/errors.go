package service

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidArgs = errors.New("invalid args")
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound)
}
