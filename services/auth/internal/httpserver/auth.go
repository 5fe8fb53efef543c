package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pokedex/pkg/apperr"
	"github.com/Skotchmaster/pokedex/pkg/logging"
	authmw "github.com/Skotchmaster/pokedex/pkg/middleware/auth"
	"github.com/Skotchmaster/pokedex/services/auth/internal/service"
	"github.com/Skotchmaster/pokedex/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return apperr.Validation("invalid body", err)
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return err
	}

	c.Set(authmw.ContextUserID, user.ID)
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return apperr.Validation("invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return err
	}

	hdr := c.Response().Header()
	hdr.Set(authmw.HeaderAccessToken, res.AccessToken)
	hdr.Set(authmw.HeaderRefreshToken, res.RefreshToken)
	hdr.Set(echo.HeaderAuthorization, authmw.AuthorizationValue(res.AccessToken, res.RefreshToken))
	c.Set(authmw.ContextUserID, res.User.ID)

	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, res.User)
}

func (h *AuthHTTP) RequestNewAccessToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	res, user, err := h.Svc.Refresh(ctx, authmw.RefreshTokenFrom(c.Request().Header))
	if err != nil {
		return err
	}

	hdr := c.Response().Header()
	hdr.Set(authmw.HeaderAccessToken, res.AccessToken)
	hdr.Set(echo.HeaderAuthorization, authmw.AuthorizationValue(res.AccessToken, ""))
	c.Set(authmw.ContextUserID, user.ID)

	l.Info("refresh_successful", "user_id", user.ID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "All good!"})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	user, err := h.Svc.LogOut(ctx, authmw.RefreshTokenFrom(c.Request().Header))
	if err != nil {
		return err
	}

	c.Set(authmw.ContextUserID, user.ID)
	l.Info("successful_logout", "user_id", user.ID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "All good! Good bye!"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return apperr.Auth(authmw.MsgNoToken, authmw.ErrNoToken)
	}

	user, err := h.Svc.Me(ctx, id.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
