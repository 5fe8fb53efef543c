package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/pokedex/pkg/apperr"
	"github.com/Skotchmaster/pokedex/pkg/events"
	"github.com/Skotchmaster/pokedex/pkg/logging"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/models"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/repo"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/search"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/transport"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

type PokemonStore interface {
	ListPokemons(ctx context.Context, offset, limit int) ([]models.Pokemon, error)
	CountPokemons(ctx context.Context) (int64, error)
	GetPokemon(ctx context.Context, id int) (*models.Pokemon, error)
	CreatePokemon(ctx context.Context, p *models.Pokemon) error
	SavePokemon(ctx context.Context, p *models.Pokemon) error
	DeletePokemon(ctx context.Context, id int) error
	SearchPokemons(ctx context.Context, q string, offset, limit int) (int64, []models.Pokemon, error)
}

// CatalogService keeps the database authoritative. Index and event failures
// are logged and never fail a request.
type CatalogService struct {
	Repo   PokemonStore
	Index  search.Indexer
	Events events.Publisher
}

func validationErr(msg string) error {
	return apperr.Validation(msg, fmt.Errorf("%w: %s", ErrValidation, msg))
}

func notFoundErr(id int, err error) error {
	return apperr.NotFound("Pokemon not found", fmt.Errorf("%w: pokemon %d: %w", ErrNotFound, id, err))
}

// ListPokemons returns one page ordered by id and the size of the whole
// collection.
func (s *CatalogService) ListPokemons(ctx context.Context, after, count int) (int64, []models.Pokemon, error) {
	if after < 0 || count < 0 {
		return 0, nil, validationErr("count and after must not be negative")
	}
	total, err := s.Repo.CountPokemons(ctx)
	if err != nil {
		return 0, nil, apperr.Store(err)
	}
	items, err := s.Repo.ListPokemons(ctx, after, count)
	if err != nil {
		return 0, nil, apperr.Store(err)
	}
	return total, items, nil
}

func (s *CatalogService) GetPokemon(ctx context.Context, id int) (*models.Pokemon, error) {
	p, err := s.Repo.GetPokemon(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundErr(id, err)
		}
		return nil, apperr.Store(err)
	}
	return p, nil
}

func (s *CatalogService) CreatePokemon(ctx context.Context, p *models.Pokemon) (*models.Pokemon, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	if p.ID <= 0 {
		l.Warn("pokemon_create_error", "status", 400, "reason", "missing id")
		return nil, validationErr("Pokemon id is required")
	}
	if err := s.Repo.CreatePokemon(ctx, p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("pokemon_create_error", "status", 400, "reason", "duplicate", "id", p.ID)
			return nil, apperr.Validation("Pokemon already exists", fmt.Errorf("%w: %w", ErrConflict, err))
		}
		l.Error("pokemon_create_error", "status", 500, "error", err)
		return nil, apperr.Store(err)
	}

	s.afterWrite(ctx, events.PokemonCreated, p)
	return p, nil
}

// ReplacePokemon overwrites the whole document; omitted fields become empty.
func (s *CatalogService) ReplacePokemon(ctx context.Context, id int, p *models.Pokemon) (*models.Pokemon, error) {
	if p.ID != 0 && p.ID != id {
		return nil, validationErr("id in body does not match path")
	}
	p.ID = id
	if err := s.Repo.SavePokemon(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundErr(id, err)
		}
		return nil, apperr.Store(err)
	}

	s.afterWrite(ctx, events.PokemonUpdated, p)
	return p, nil
}

func (s *CatalogService) PatchPokemon(ctx context.Context, id int, req transport.PatchPokemonRequest) (*models.Pokemon, error) {
	if req.ID != nil && *req.ID != id {
		return nil, validationErr("id cannot be changed")
	}

	p, err := s.GetPokemon(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(p)

	if err := s.Repo.SavePokemon(ctx, p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundErr(id, err)
		}
		return nil, apperr.Store(err)
	}

	s.afterWrite(ctx, events.PokemonUpdated, p)
	return p, nil
}

func (s *CatalogService) DeletePokemon(ctx context.Context, id int) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete")

	if err := s.Repo.DeletePokemon(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundErr(id, err)
		}
		return apperr.Store(err)
	}

	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			l.Error("index_delete_failed", "id", id, "error", err)
		}
	}
	s.publish(ctx, events.Event{Type: events.PokemonDeleted, Key: fmt.Sprint(id), Payload: map[string]any{"id": id}})
	return nil
}

// Search prefers the Elasticsearch index and falls back to the database.
func (s *CatalogService) Search(ctx context.Context, q string, offset, limit int) (int64, []models.Pokemon, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	if q == "" {
		return 0, nil, validationErr("query is required")
	}
	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			return total, items, nil
		}
		l.Warn("index_search_failed", "reason", "falling back to database", "error", err)
	}

	total, items, err := s.Repo.SearchPokemons(ctx, q, offset, limit)
	if err != nil {
		return 0, nil, apperr.Store(err)
	}
	return total, items, nil
}

func (s *CatalogService) afterWrite(ctx context.Context, evType string, p *models.Pokemon) {
	if s.Index != nil {
		if err := s.Index.Index(ctx, p); err != nil {
			logging.FromContext(ctx).Error("index_failed", "id", p.ID, "error", err)
		}
	}
	s.publish(ctx, events.Event{Type: evType, Key: fmt.Sprint(p.ID), Payload: p})
}

func (s *CatalogService) publish(ctx context.Context, ev events.Event) {
	if s.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Events.Publish(ctx, events.TopicPokemonEvents, ev); err != nil {
		logging.FromContext(ctx).Error("publish_failed", "topic", events.TopicPokemonEvents, "type", ev.Type, "error", err)
	}
}
