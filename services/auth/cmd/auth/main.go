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

	authcfg "github.com/Skotchmaster/pokedex/services/auth/internal/config"
	"github.com/Skotchmaster/pokedex/services/auth/internal/httpserver"
	"github.com/Skotchmaster/pokedex/services/auth/internal/models"
	"github.com/Skotchmaster/pokedex/services/auth/internal/repo"
	"github.com/Skotchmaster/pokedex/services/auth/internal/service"
	"github.com/Skotchmaster/pokedex/services/auth/internal/transport"
)

func main() {
	pkgcfg.LoadDotEnv("services/auth/.env", ".env")
	cfg := authcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &reqlog.RequestLog{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	tk, err := tokens.NewService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, tokens.WithAccessTTL(cfg.AccessTTL))
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	svc := &service.AuthService{
		Repo:             &repo.GormRepo{DB: db},
		Tokens:           tk,
		Events:           producer,
		AllowAdminSignup: cfg.AllowAdminSignup,
	}

	if cfg.AdminUsername != "" {
		seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, created, err := svc.EnsureUser(seedCtx, transport.RegisterRequest{
			Username: cfg.AdminUsername,
			Password: cfg.AdminPassword,
			Email:    cfg.AdminEmail,
			Role:     tokens.RoleAdmin,
		})
		seedCancel()
		if err != nil {
			log.Fatalf("seed admin: %v", err)
		}
		logger.Info("admin_seeded", "username", cfg.AdminUsername, "created", created)
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAuthorization, authmw.HeaderAccessToken, authmw.HeaderRefreshToken},
		ExposeHeaders: []string{echo.HeaderAuthorization, authmw.HeaderAccessToken, authmw.HeaderRefreshToken},
	}))
	e.Use(reqlog.Middleware(&reqlog.Store{DB: db}))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.Recover())

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: svc},
		Gate:        authmw.NewGate(tk),
		LoginRate:   cfg.LoginRate,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("auth listening", "addr", srv.Addr)
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
	logger.Info("auth stopped")
}
