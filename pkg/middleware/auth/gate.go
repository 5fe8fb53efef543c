package authmw

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pokedex/pkg/apperr"
	"github.com/Skotchmaster/pokedex/pkg/logging"
	"github.com/Skotchmaster/pokedex/pkg/tokens"
)

const (
	HeaderAccessToken  = "auth-token-access"
	HeaderRefreshToken = "auth-token-refresh"

	ContextUserID   = "user_id"
	ContextRole     = "role"
	ContextIdentity = "identity"
)

const (
	MsgNoToken      = "No Token: Please provide the access token using the headers."
	MsgInvalidToken = "Invalid Token Verification. Log in again."
	MsgAccessDenied = "Access denied"
)

var (
	ErrNoToken      = errors.New("no token")
	ErrAccessDenied = errors.New("access denied")
)

type Verifier interface {
	VerifyAccess(token string) (*tokens.Claims, error)
}

// Gate guards routes with access tokens. It never touches the database: the
// identity and role are taken from the verified token payload.
type Gate struct {
	Tokens Verifier
}

func NewGate(v Verifier) *Gate {
	return &Gate{Tokens: v}
}

type ValidatorFunc func(id tokens.Identity) error

func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return g.requireAuthWithValidator(next, nil)
}

// RequireAdmin rejects non-admin identities with the same auth error class as
// a bad token. Used on its own it also performs the RequireAuth check.
func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.requireAuthWithValidator(next, func(id tokens.Identity) error {
		if !id.IsAdmin() {
			return apperr.Auth(MsgAccessDenied, ErrAccessDenied)
		}
		return nil
	})
}

func (g *Gate) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth_gate")

		id, ok := IdentityFrom(c)
		if !ok {
			raw := AccessTokenFrom(c.Request().Header)
			if raw == "" {
				l.Warn("auth_rejected", "reason", "no token")
				return apperr.Auth(MsgNoToken, ErrNoToken)
			}

			claims, err := g.Tokens.VerifyAccess(raw)
			if err != nil || claims == nil {
				l.Warn("auth_rejected", "reason", "invalid token", "error", err)
				return apperr.Auth(MsgInvalidToken, err)
			}
			id = claims.User
			setUserContext(c, id)
		}

		if validator != nil {
			if err := validator(id); err != nil {
				l.Warn("auth_rejected", "reason", "validator", "user_id", id.ID, "error", err)
				return err
			}
		}
		return next(c)
	}
}

func setUserContext(c echo.Context, id tokens.Identity) {
	c.Set(ContextUserID, id.ID)
	c.Set(ContextRole, id.Role)
	c.Set(ContextIdentity, id)
}

// IdentityFrom returns the identity stored by a passed gate.
func IdentityFrom(c echo.Context) (tokens.Identity, bool) {
	id, ok := c.Get(ContextIdentity).(tokens.Identity)
	return id, ok
}

type headerGetter interface {
	Get(key string) string
}

// AccessTokenFrom reads the access token from auth-token-access or from an
// Authorization header of the form "Bearer <access> [Refresh <refresh>]".
func AccessTokenFrom(h headerGetter) string {
	if v := strings.TrimSpace(h.Get(HeaderAccessToken)); v != "" {
		return v
	}
	return authorizationField(h.Get(echo.HeaderAuthorization), "Bearer")
}

// RefreshTokenFrom reads the refresh token from auth-token-refresh or from the
// Refresh field of the Authorization header.
func RefreshTokenFrom(h headerGetter) string {
	if v := strings.TrimSpace(h.Get(HeaderRefreshToken)); v != "" {
		return v
	}
	return authorizationField(h.Get(echo.HeaderAuthorization), "Refresh")
}

func authorizationField(header, scheme string) string {
	fields := strings.Fields(header)
	for i := 0; i+1 < len(fields); i++ {
		if strings.EqualFold(fields[i], scheme) {
			return fields[i+1]
		}
	}
	return ""
}

// AuthorizationValue builds the combined header returned on login.
func AuthorizationValue(access, refresh string) string {
	v := "Bearer " + access
	if refresh != "" {
		v += " Refresh " + refresh
	}
	return v
}
