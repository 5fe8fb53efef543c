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
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/pokedex/pkg/apperr"
	pkgcfg "github.com/Skotchmaster/pokedex/pkg/config"
	pkgdb "github.com/Skotchmaster/pokedex/pkg/db"
	"github.com/Skotchmaster/pokedex/pkg/events"
	"github.com/Skotchmaster/pokedex/pkg/logging"
	authmw "github.com/Skotchmaster/pokedex/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/pokedex/pkg/middleware/logging"
	"github.com/Skotchmaster/pokedex/pkg/reqlog"
	"github.com/Skotchmaster/pokedex/pkg/tokens"

	catalogcfg "github.com/Skotchmaster/pokedex/services/catalog/internal/config"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/httpserver"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/models"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/repo"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/search"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/service"
)

func main() {
	pkgcfg.LoadDotEnv("services/catalog/.env", ".env")
	cfg := catalogcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&models.Pokemon{}, &reqlog.RequestLog{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	tk, err := tokens.NewService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	svc := &service.CatalogService{Repo: &repo.GormRepo{DB: db}, Events: producer}
	if cfg.Search.URL != "" {
		es, err := search.NewClient(cfg.Search)
		if err != nil {
			logger.Warn("search_disabled", "reason", "elasticsearch unavailable", "error", err)
		} else {
			svc.Index = search.NewESIndex(es, cfg.Search.Index)
		}
	}

	logs := &reqlog.Store{DB: db}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAuthorization, authmw.HeaderAccessToken, authmw.HeaderRefreshToken},
		ExposeHeaders: []string{echo.HeaderAuthorization, authmw.HeaderAccessToken, authmw.HeaderRefreshToken, httpserver.HeaderTotalCount},
	}))
	e.Use(reqlog.Middleware(logs))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.Recover())

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: svc},
		ReportHandler:  &httpserver.ReportHTTP{Store: logs},
		Gate:           authmw.NewGate(tk),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("catalog listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db close", "error", err)
	}
	logger.Info("catalog stopped")
}
