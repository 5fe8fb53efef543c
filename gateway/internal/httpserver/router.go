package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pokedex/gateway/internal/middleware"
	authmw "github.com/Skotchmaster/pokedex/pkg/middleware/auth"
)

type AuthService interface {
	middleware.Refresher
	Ready(ctx context.Context) error
}

type Deps struct {
	AuthURL    string
	CatalogURL string

	Gate   *authmw.Gate
	Auth   AuthService
	Logger *slog.Logger
}

// Register mounts the auth service under /auth and the catalog API under
// /api/v1. Catalog requests are checked at the edge before being forwarded.
func Register(e *echo.Echo, d *Deps) error {
	for _, m := range middleware.Common(d.Logger) {
		e.Use(m)
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Auth.Ready(ctx); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "auth service unavailable")
		}
		return c.NoContent(http.StatusOK)
	})

	authProxy, err := newProxy("auth", d.AuthURL, "/auth")
	if err != nil {
		return err
	}

	catalogProxy, err := newProxy("catalog", d.CatalogURL, "")
	if err != nil {
		return err
	}

	e.Any("/auth/*", authProxy)

	api := e.Group("/api/v1")
	api.Use(middleware.AutoRefresh(d.Gate.Tokens, d.Auth))
	api.Use(d.Gate.RequireAuth)
	api.Any("/*", catalogProxy)

	return nil
}
