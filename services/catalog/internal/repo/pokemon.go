package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pokedex/pkg/db"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/models"
)

func (r *GormRepo) ListPokemons(ctx context.Context, offset, limit int) ([]models.Pokemon, error) {
	items := []models.Pokemon{}
	err := r.DB.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *GormRepo) CountPokemons(ctx context.Context) (int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&models.Pokemon{}).Count(&total).Error
	return total, err
}

func (r *GormRepo) GetPokemon(ctx context.Context, id int) (*models.Pokemon, error) {
	var p models.Pokemon
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) CreatePokemon(ctx context.Context, p *models.Pokemon) error {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Pokemon{}).Where("id = ?", p.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	if err := r.DB.WithContext(ctx).Create(p).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// SavePokemon overwrites every column of an existing row.
func (r *GormRepo) SavePokemon(ctx context.Context, p *models.Pokemon) error {
	res := r.DB.WithContext(ctx).Model(&models.Pokemon{}).
		Where("id = ?", p.ID).
		Select("*").
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeletePokemon(ctx context.Context, id int) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Pokemon{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// SearchPokemons matches q against the localized names and types. It backs
// search when no Elasticsearch index is configured.
func (r *GormRepo) SearchPokemons(ctx context.Context, q string, offset, limit int) (int64, []models.Pokemon, error) {
	like := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
	where := r.DB.WithContext(ctx).Model(&models.Pokemon{}).Where(
		`LOWER(name_english) LIKE ? ESCAPE '\' OR LOWER(name_japanese) LIKE ? ESCAPE '\' OR `+
			`LOWER(name_chinese) LIKE ? ESCAPE '\' OR LOWER(name_french) LIKE ? ESCAPE '\' OR LOWER(type) LIKE ? ESCAPE '\'`,
		like, like, like, like, like,
	)

	var total int64
	if err := where.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := []models.Pokemon{}
	if err := where.Session(&gorm.Session{}).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
