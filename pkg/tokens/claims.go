package tokens

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
)

// Identity is the user snapshot embedded in every token at issuance time.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

type Claims struct {
	User Identity `json:"user"`
	Type Kind     `json:"typ"`
	jwt.RegisteredClaims
}

// AccessClaimsFromToken verifies an access token against secret.
func AccessClaimsFromToken(tokenStr string, accessSecret []byte) (*Claims, error) {
	return Verify(tokenStr, accessSecret, KindAccess, nil)
}

// RefreshClaimsFromToken verifies a refresh token against secret.
func RefreshClaimsFromToken(tokenStr string, refreshSecret []byte) (*Claims, error) {
	return Verify(tokenStr, refreshSecret, KindRefresh, nil)
}
