package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/donation-service/internal/api/http"
	"github.com/spec-kit/donation-service/internal/api/http/handlers"
	"github.com/spec-kit/donation-service/internal/auth"
	"github.com/spec-kit/donation-service/internal/config"
	"github.com/spec-kit/donation-service/internal/events"
	"github.com/spec-kit/donation-service/internal/matching"
	"github.com/spec-kit/donation-service/internal/observability"
	"github.com/spec-kit/donation-service/internal/persistence"
	"github.com/spec-kit/donation-service/internal/registry"
	"github.com/spec-kit/donation-service/internal/service"
	"github.com/spec-kit/donation-service/internal/session"
	"github.com/spec-kit/donation-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redis *persistence.Redis
	var records session.RecordStore
	if cfg.Session.Backend == "redis" {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		records = session.NewRedisRecordStore(redis.Client, cfg.Session.RecordKey)
	} else {
		records = session.NewFileRecordStore(cfg.Session.FilePath)
	}

	directory := session.NewDirectory()
	store := session.NewStore(records, logger)
	manager := session.NewManager(store, directory, cfg.Auth.BcryptCost, cfg.Auth.MinPasswordLength, logger)
	manager.Restore(ctx)

	dispatcher := events.NewInMemoryDispatcher()
	alertRegistry := registry.New()
	coordinator := matching.New(alertRegistry, directory)

	sessionService := service.NewSessionService(manager, dispatcher)
	alertService := service.NewAlertService(service.AlertDependencies{
		Registry:    alertRegistry,
		Coordinator: coordinator,
		Directory:   directory,
		Dispatcher:  dispatcher,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokenManager)

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis),
		Sessions:       handlers.NewSessionHandler(sessionService, directory, tokenManager),
		Alerts:         handlers.NewAlertsHandler(alertService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
