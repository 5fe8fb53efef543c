package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	authmw "github.com/Skotchmaster/pokedex/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler *AuthHTTP
	Gate        *authmw.Gate
	// LoginRate is the per-IP limit on /login in requests per second; zero
	// disables limiting.
	LoginRate float64
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	loginMw := []echo.MiddlewareFunc{}
	if d.LoginRate > 0 {
		loginMw = append(loginMw, middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStore(rate.Limit(d.LoginRate)),
			DenyHandler: func(c echo.Context, _ string, _ error) error {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts")
			},
		}))
	}

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login, loginMw...)
	e.POST("/requestNewAccessToken", d.AuthHandler.RequestNewAccessToken)
	e.POST("/logout", d.AuthHandler.LogOut)

	users := e.Group("/users", d.Gate.RequireAuth)
	users.GET("/me", d.AuthHandler.Me)
}
