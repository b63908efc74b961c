package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/leadforge/internal/auth"
	"github.com/octobees/leadforge/internal/bootstrap"
	"github.com/octobees/leadforge/internal/config"
	"github.com/octobees/leadforge/internal/database"
	"github.com/octobees/leadforge/internal/handler"
	middlewarepkg "github.com/octobees/leadforge/internal/middleware"
	"github.com/octobees/leadforge/internal/repository"
	"github.com/octobees/leadforge/internal/router"
	"github.com/octobees/leadforge/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := config.InitLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var (
		handlers = router.Handlers{}
		recorder service.RunRecorder
	)
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			cancel()
			logger.Fatal("failed to connect database", zap.Error(err))
		}
		if err := database.EnsureSchema(ctx, pool); err != nil {
			cancel()
			logger.Fatal("failed to apply schema", zap.Error(err))
		}
		cancel()
		defer pool.Close()

		runsService := service.NewRunsService(repository.NewPGXRunsRepository(pool))
		recorder = runsService
		handlers.Runs = handler.NewRunsHandler(runsService)
	} else {
		logger.Warn("DATABASE_URL not set, run history disabled")
	}

	leadService, err := bootstrap.NewLeadService(cfg, recorder)
	if err != nil {
		logger.Fatal("failed to configure lead pipeline", zap.Error(err))
	}
	handlers.Leads = handler.NewLeadsHandler(leadService)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("scraper_mode", cfg.Scraper.Mode),
			zap.Int("concurrency", cfg.Pipeline.Concurrency),
		)
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
