package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/maintenance-scheduler/internal/api/http"
	"github.com/spec-kit/maintenance-scheduler/internal/api/http/handlers"
	"github.com/spec-kit/maintenance-scheduler/internal/auth"
	"github.com/spec-kit/maintenance-scheduler/internal/config"
	"github.com/spec-kit/maintenance-scheduler/internal/events"
	"github.com/spec-kit/maintenance-scheduler/internal/observability"
	"github.com/spec-kit/maintenance-scheduler/internal/persistence"
	"github.com/spec-kit/maintenance-scheduler/internal/repository"
	"github.com/spec-kit/maintenance-scheduler/internal/service"
	"github.com/spec-kit/maintenance-scheduler/internal/worker"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	workerRepo := repository.NewWorkerRepository(pool)
	propertyRepo := repository.NewPropertyRepository(pool)
	historyRepo := repository.NewRequestHistoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	cache := service.NewRecommendationCache(redis, cfg.Scheduling.RecommendationCacheTTL())

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AccountRepo:       accountRepo,
		PasswordResetRepo: resetRepo,
	})
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo:  requestRepo,
		PropertyRepo: propertyRepo,
		HistoryRepo:  historyRepo,
		Dispatcher:   dispatcher,
	})
	schedulingService := service.NewSchedulingService(cfg.Scheduling, service.SchedulingDependencies{
		Pool:        pool,
		RequestRepo: requestRepo,
		WorkerRepo:  workerRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
		Cache:       cache,
		Metrics:     metrics,
		Logger:      logger,
	})
	workerService := service.NewWorkerService(workerRepo)
	propertyService := service.NewPropertyService(propertyRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Requests:       handlers.NewRequestsHandler(requestService, schedulingService),
		Scheduling:     handlers.NewSchedulingHandler(requestService, schedulingService),
		Workers:        handlers.NewWorkersHandler(workerService, schedulingService),
		Properties:     handlers.NewPropertiesHandler(propertyService),
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
