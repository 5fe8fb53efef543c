package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pokedex/pkg/tokens"
)

// User holds at most one live token pair. A NULL LastRefreshToken means the
// user is logged out.
type User struct {
	ID               string    `gorm:"primaryKey;size:36"             json:"id"`
	Username         string    `gorm:"uniqueIndex;size:20;not null"   json:"username"`
	PasswordHash     string    `gorm:"not null"                       json:"-"`
	Email            string    `gorm:"uniqueIndex;not null"           json:"email"`
	Role             string    `gorm:"size:10;not null;default:user"  json:"role"`
	LastAccessToken  *string   `gorm:"index"                          json:"-"`
	LastRefreshToken *string   `gorm:"index"                          json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = tokens.RoleUser
	}
	return nil
}

func (u *User) Identity() tokens.Identity {
	return tokens.Identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
