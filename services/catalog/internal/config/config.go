package config

import (
	"github.com/Skotchmaster/pokedex/pkg/config"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/search"
)

type ServiceConfig struct {
	config.Config

	Addr   string
	Search search.Config
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "catalog"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "ACCESS_TOKEN_SECRET")
	config.MustNonEmptyBytes(cfg.JWTRefreshSecret, "REFRESH_TOKEN_SECRET")

	return ServiceConfig{
		Config: cfg,
		Addr:   config.EnvDefault("CATALOG_ADDR", ":6003"),
		Search: search.Config{
			URL:      config.EnvDefault("ES_URL", ""),
			Username: config.EnvDefault("ES_USER", ""),
			Password: config.EnvDefault("ES_PASSWORD", ""),
			Index:    config.EnvDefault("ES_INDEX", search.DefaultIndex),
		},
	}
}
