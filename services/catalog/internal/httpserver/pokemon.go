package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pokedex/pkg/apperr"
	"github.com/Skotchmaster/pokedex/pkg/logging"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/models"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/service"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/transport"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/util"
)

const HeaderTotalCount = "X-Total-Count"

var errBadID = errors.New("invalid pokemon id")

type CatalogHTTP struct {
	Svc *service.CatalogService
}

// pokemonID reads the id from the path and falls back to the ?id= query.
func pokemonID(c echo.Context) (int, error) {
	raw := c.Param("id")
	if raw == "" {
		raw = c.QueryParam("id")
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Pokemon id must be a positive integer", errBadID)
	}
	return id, nil
}

func (h *CatalogHTTP) ListPokemons(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pokemon.list")

	after := util.ParseIntDefault(c.QueryParam("after"), 0)
	count := util.ParseIntDefault(c.QueryParam("count"), util.DefaultCount)
	offset, limit := util.Window(after, count)

	total, items, err := h.Svc.ListPokemons(ctx, offset, limit)
	if err != nil {
		l.Error("list_pokemons_error", "status", 500, "error", err)
		return err
	}

	l.Info("list_pokemons_success", "count", len(items), "total", total)
	c.Response().Header().Set(HeaderTotalCount, strconv.FormatInt(total, 10))
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetPokemon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pokemon.get")

	id, err := pokemonID(c)
	if err != nil {
		l.Warn("get_pokemon_error", "status", 400, "reason", "bad id")
		return err
	}

	p, err := h.Svc.GetPokemon(ctx, id)
	if err != nil {
		l.Warn("get_pokemon_error", "id", id, "error", err)
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) SearchPokemons(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pokemon.search")

	q := c.QueryParam("q")
	after := util.ParseIntDefault(c.QueryParam("after"), 0)
	count := util.ParseIntDefault(c.QueryParam("count"), util.DefaultCount)
	offset, limit := util.Window(after, count)

	total, items, err := h.Svc.Search(ctx, q, offset, limit)
	if err != nil {
		l.Warn("search_pokemons_error", "q", q, "error", err)
		return err
	}

	l.Info("search_pokemons_success", "q", q, "total", total)
	return c.JSON(http.StatusOK, transport.SearchResponse{Total: total, Pokemons: items})
}

func (h *CatalogHTTP) CreatePokemon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pokemon.create")

	var p models.Pokemon
	if err := c.Bind(&p); err != nil {
		l.Warn("create_pokemon_error", "status", 400, "reason", "bad json", "error", err)
		return apperr.Validation("invalid request body", err)
	}

	created, err := h.Svc.CreatePokemon(ctx, &p)
	if err != nil {
		return err
	}

	l.Info("create_pokemon_success", "id", created.ID)
	return c.JSON(http.StatusOK, transport.MutationResponse{Msg: "Added Successfully", PokeInfo: created})
}

func (h *CatalogHTTP) ReplacePokemon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pokemon.replace")

	id, err := pokemonID(c)
	if err != nil {
		return err
	}
	var p models.Pokemon
	if err := c.Bind(&p); err != nil {
		l.Warn("replace_pokemon_error", "status", 400, "reason", "bad json", "error", err)
		return apperr.Validation("invalid request body", err)
	}

	updated, err := h.Svc.ReplacePokemon(ctx, id, &p)
	if err != nil {
		l.Warn("replace_pokemon_error", "id", id, "error", err)
		return err
	}

	l.Info("replace_pokemon_success", "id", id)
	return c.JSON(http.StatusOK, transport.MutationResponse{Msg: "Updated Successfully", PokeInfo: updated})
}

func (h *CatalogHTTP) PatchPokemon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pokemon.patch")

	id, err := pokemonID(c)
	if err != nil {
		return err
	}
	var req transport.PatchPokemonRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_pokemon_error", "status", 400, "reason", "bad json", "error", err)
		return apperr.Validation("invalid request body", err)
	}

	updated, err := h.Svc.PatchPokemon(ctx, id, req)
	if err != nil {
		l.Warn("patch_pokemon_error", "id", id, "error", err)
		return err
	}

	l.Info("patch_pokemon_success", "id", id)
	return c.JSON(http.StatusOK, transport.MutationResponse{Msg: "Updated Successfully", PokeInfo: updated})
}

func (h *CatalogHTTP) DeletePokemon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pokemon.delete")

	id, err := pokemonID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeletePokemon(ctx, id); err != nil {
		l.Warn("delete_pokemon_error", "id", id, "error", err)
		return err
	}

	l.Info("delete_pokemon_success", "id", id)
	return c.JSON(http.StatusOK, transport.MutationResponse{Msg: "Deleted Successfully"})
}
