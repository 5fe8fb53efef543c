package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/pokedex/services/catalog/internal/search"
)

func TestLoad(t *testing.T) {
	t.Setenv("SERVICE_NAME", "")
	t.Setenv("DATABASE_URL", "sqlite://:memory:")
	t.Setenv("ACCESS_TOKEN_SECRET", "a")
	t.Setenv("REFRESH_TOKEN_SECRET", "r")
	t.Setenv("CATALOG_ADDR", "")
	t.Setenv("ES_URL", "http://localhost:9200")
	t.Setenv("ES_INDEX", "")

	cfg := Load()
	assert.Equal(t, "catalog", cfg.ServiceName)
	assert.Equal(t, ":6003", cfg.Addr)
	assert.Equal(t, "http://localhost:9200", cfg.Search.URL)
	assert.Equal(t, search.DefaultIndex, cfg.Search.Index)
}
