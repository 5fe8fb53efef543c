package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pokedex/gateway/internal/config"
	"github.com/Skotchmaster/pokedex/gateway/internal/httpserver"
	"github.com/Skotchmaster/pokedex/pkg/apperr"
	"github.com/Skotchmaster/pokedex/pkg/authclient"
	pkgcfg "github.com/Skotchmaster/pokedex/pkg/config"
	"github.com/Skotchmaster/pokedex/pkg/logging"
	authmw "github.com/Skotchmaster/pokedex/pkg/middleware/auth"
	"github.com/Skotchmaster/pokedex/pkg/tokens"
)

func main() {
	pkgcfg.LoadDotEnv("gateway/.env", ".env")
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	tk, err := tokens.NewService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	if err := httpserver.Register(e, &httpserver.Deps{
		AuthURL:    cfg.AuthURL,
		CatalogURL: cfg.CatalogURL,
		Gate:       authmw.NewGate(tk),
		Auth:       authclient.NewClient(cfg.AuthURL),
		Logger:     logger,
	}); err != nil {
		log.Fatal(err)
	}

	go func() {
		logger.Info("gateway listening", "addr", cfg.ListenAddr)
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("gateway stopped")
}
