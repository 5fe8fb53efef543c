package config

import (
	"github.com/Skotchmaster/pokedex/pkg/config"
)

type Config struct {
	config.Config

	ListenAddr string
	AuthURL    string
	CatalogURL string
}

func Load() Config {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "gateway"
	}
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "ACCESS_TOKEN_SECRET")
	config.MustNonEmptyBytes(cfg.JWTRefreshSecret, "REFRESH_TOKEN_SECRET")

	return Config{
		Config:     cfg,
		ListenAddr: config.EnvDefault("GATEWAY_ADDR", ":8080"),
		AuthURL:    config.MustNonEmpty(config.EnvDefault("AUTH_URL", ""), "AUTH_URL"),
		CatalogURL: config.MustNonEmpty(config.EnvDefault("CATALOG_URL", ""), "CATALOG_URL"),
	}
}
