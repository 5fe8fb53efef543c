package config

import (
	"time"

	"github.com/Skotchmaster/pokedex/pkg/config"
	"github.com/Skotchmaster/pokedex/pkg/tokens"
)

type ServiceConfig struct {
	config.Config

	Addr             string
	AccessTTL        time.Duration
	LoginRate        float64
	AllowAdminSignup bool

	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "auth"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "ACCESS_TOKEN_SECRET")
	config.MustNonEmptyBytes(cfg.JWTRefreshSecret, "REFRESH_TOKEN_SECRET")

	return ServiceConfig{
		Config:           cfg,
		Addr:             config.EnvDefault("AUTH_ADDR", ":5003"),
		AccessTTL:        config.EnvDurationDefault("ACCESS_TOKEN_TTL", tokens.DefaultAccessTTL),
		LoginRate:        float64(config.EnvIntDefault("LOGIN_RATE_LIMIT", 5)),
		AllowAdminSignup: config.EnvBoolDefault("AUTH_ALLOW_ADMIN_SIGNUP", true),

		AdminUsername: config.EnvDefault("AUTH_ADMIN_USERNAME", ""),
		AdminPassword: config.EnvDefault("AUTH_ADMIN_PASSWORD", ""),
		AdminEmail:    config.EnvDefault("AUTH_ADMIN_EMAIL", ""),
	}
}
