package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pokedex/pkg/logging"
	authmw "github.com/Skotchmaster/pokedex/pkg/middleware/auth"
	"github.com/Skotchmaster/pokedex/pkg/tokens"
)

type Refresher interface {
	RequestNewAccessToken(ctx context.Context, refreshToken string) (string, error)
}

// AutoRefresh swaps an expired access token for a new one when the request
// also carries a refresh token. The new token replaces the request header
// before the gate runs and is returned to the client in auth-token-access.
// Any other outcome leaves the request untouched for the gate to judge.
func AutoRefresh(v authmw.Verifier, auth Refresher) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			access := authmw.AccessTokenFrom(req.Header)
			if access == "" {
				return next(c)
			}
			if _, err := v.VerifyAccess(access); !errors.Is(err, tokens.ErrExpired) {
				return next(c)
			}
			refresh := authmw.RefreshTokenFrom(req.Header)
			if refresh == "" {
				return next(c)
			}

			l := logging.FromContext(req.Context()).With("middleware", "auto_refresh")
			fresh, err := auth.RequestNewAccessToken(req.Context(), refresh)
			if err != nil {
				l.Warn("auto_refresh_failed", "error", err)
				return next(c)
			}

			req.Header.Set(authmw.HeaderAccessToken, fresh)
			req.Header.Set(echo.HeaderAuthorization, authmw.AuthorizationValue(fresh, refresh))
			c.Response().Header().Set(authmw.HeaderAccessToken, fresh)
			l.Info("access_token_refreshed")
			return next(c)
		}
	}
}
