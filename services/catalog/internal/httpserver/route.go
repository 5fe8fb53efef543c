package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/pokedex/pkg/middleware/auth"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
	ReportHandler  *ReportHTTP
	Gate           *authmw.Gate
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api/v1", d.Gate.RequireAuth)
	api.GET("/pokemons", d.CatalogHandler.ListPokemons)
	api.GET("/pokemons/search", d.CatalogHandler.SearchPokemons)
	api.GET("/pokemon", d.CatalogHandler.GetPokemon)
	api.GET("/pokemon/:id", d.CatalogHandler.GetPokemon)

	// admin routes take RequireAdmin per route; an empty-prefix group would
	// claim the group's not-found routes and turn unknown paths into 403s
	admin := d.Gate.RequireAdmin
	api.POST("/pokemon", d.CatalogHandler.CreatePokemon, admin)
	api.PUT("/pokemon/:id", d.CatalogHandler.ReplacePokemon, admin)
	api.PATCH("/pokemon/:id", d.CatalogHandler.PatchPokemon, admin)
	api.DELETE("/pokemon", d.CatalogHandler.DeletePokemon, admin)
	api.DELETE("/pokemon/:id", d.CatalogHandler.DeletePokemon, admin)

	api.GET("/report/top-api-users", d.ReportHandler.TopAPIUsers, admin)
	api.GET("/report/recent-errors", d.ReportHandler.RecentErrors, admin)
	api.GET("/report/top-users-by-endpoint", d.ReportHandler.TopUsersByEndpoint, admin)
	api.GET("/report/error-by-endpoint", d.ReportHandler.ErrorsByEndpoint, admin)
	api.GET("/report/unique-api-users", d.ReportHandler.UniqueAPIUsers, admin)
}
