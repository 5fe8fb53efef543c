package tokens

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultAccessTTL = 60 * time.Minute

// Service signs and verifies access and refresh tokens. Access and refresh
// tokens use different secrets and carry a typ claim, so one class can never
// be presented as the other.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	now           func() time.Time
}

type Option func(*Service)

func WithAccessTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.accessTTL = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(accessSecret, refreshSecret []byte, opts ...Option) (*Service, error) {
	if len(accessSecret) == 0 || len(refreshSecret) == 0 {
		return nil, errors.New("tokens: access and refresh secrets are required")
	}
	if bytes.Equal(accessSecret, refreshSecret) {
		return nil, errors.New("tokens: access and refresh secrets must differ")
	}
	s := &Service{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     DefaultAccessTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) IssueAccessToken(id Identity) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := Claims{
		User: id,
		Type: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := sign(claims, s.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// IssueRefreshToken signs a refresh token without an exp claim; whether it is
// still usable is decided by the credential store.
func (s *Service) IssueRefreshToken(id Identity) (string, error) {
	claims := Claims{
		User: id,
		Type: KindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  id.ID,
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	return sign(claims, s.refreshSecret)
}

func (s *Service) VerifyAccess(tokenStr string) (*Claims, error) {
	return Verify(tokenStr, s.accessSecret, KindAccess, s.now)
}

func (s *Service) VerifyRefresh(tokenStr string) (*Claims, error) {
	return Verify(tokenStr, s.refreshSecret, KindRefresh, s.now)
}

func sign(claims Claims, secret []byte) (string, error) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", claims.Type, err)
	}
	return tok, nil
}

// Verify checks signature, expiry and token kind. Any failure to decode is
// reported as an invalid token.
func Verify(tokenStr string, secret []byte, kind Kind, now func() time.Time) (*Claims, error) {
	if tokenStr == "" || len(secret) == 0 {
		return nil, ErrInvalidToken
	}
	if now == nil {
		now = time.Now
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
	)

	var claims Claims
	tkn, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	case err != nil || tkn == nil || !tkn.Valid:
		return nil, ErrInvalidToken
	}

	if claims.Type != kind || claims.User.ID == "" {
		return nil, ErrInvalidToken
	}
	if kind == KindAccess && claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
