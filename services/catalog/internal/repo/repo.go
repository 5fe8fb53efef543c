package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("pokemon not found")
	ErrDuplicate = errors.New("pokemon already exists")
)

type GormRepo struct {
	DB *gorm.DB
}
