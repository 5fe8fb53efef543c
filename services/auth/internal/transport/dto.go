package transport

import (
	"time"

	"github.com/Skotchmaster/pokedex/services/auth/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	User         *models.User
}

type RefreshResult struct {
	AccessToken string
	AccessExp   time.Time
}

type MessageResponse struct {
	Message string `json:"message"`
}
