package transport

import "github.com/Skotchmaster/pokedex/services/catalog/internal/models"

type NamePatch struct {
	English  *string `json:"english"`
	Japanese *string `json:"japanese"`
	Chinese  *string `json:"chinese"`
	French   *string `json:"french"`
}

type BasePatch struct {
	HP        *int `json:"HP"`
	Attack    *int `json:"Attack"`
	Defense   *int `json:"Defense"`
	SpAttack  *int `json:"Sp. Attack"`
	SpDefense *int `json:"Sp. Defense"`
	Speed     *int `json:"Speed"`
}

// PatchPokemonRequest carries only the fields to change; nil means keep.
type PatchPokemonRequest struct {
	ID   *int       `json:"id"`
	Name *NamePatch `json:"name"`
	Type *[]string  `json:"type"`
	Base *BasePatch `json:"base"`
}

func (r PatchPokemonRequest) Apply(p *models.Pokemon) {
	if n := r.Name; n != nil {
		setString(&p.Name.English, n.English)
		setString(&p.Name.Japanese, n.Japanese)
		setString(&p.Name.Chinese, n.Chinese)
		setString(&p.Name.French, n.French)
	}
	if r.Type != nil {
		p.Type = *r.Type
	}
	if b := r.Base; b != nil {
		setInt(&p.Base.HP, b.HP)
		setInt(&p.Base.Attack, b.Attack)
		setInt(&p.Base.Defense, b.Defense)
		setInt(&p.Base.SpAttack, b.SpAttack)
		setInt(&p.Base.SpDefense, b.SpDefense)
		setInt(&p.Base.Speed, b.Speed)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

type MutationResponse struct {
	Msg      string          `json:"msg"`
	PokeInfo *models.Pokemon `json:"pokeInfo,omitempty"`
}

type SearchResponse struct {
	Total    int64            `json:"total"`
	Pokemons []models.Pokemon `json:"pokemons"`
}
