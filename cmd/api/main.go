package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/classifier"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/sla"
	"github.com/spec-kit/complaint-service/internal/worker"
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

	var (
		complaintRepo repository.ComplaintRepository
		taskRepo      repository.TaskRepository
		activityRepo  repository.ActivityLogRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		complaintRepo = repository.NewComplaintRepository(pool)
		taskRepo = repository.NewTaskRepository(pool)
		activityRepo = repository.NewActivityLogRepository(pool)
	} else {
		logger.Warn("running on in-memory store; data will not survive restarts")
		store := repository.NewMemoryStore()
		complaintRepo = store.Complaints()
		taskRepo = store.Tasks()
		activityRepo = store.ActivityLog()
	}

	policy := sla.NewPolicy(sla.PolicyHours{
		Critical: cfg.SLA.CriticalHours,
		High:     cfg.SLA.HighHours,
		Medium:   cfg.SLA.MediumHours,
		Low:      cfg.SLA.LowHours,
	}, cfg.SLA.InclusiveThreshold)

	dispatcher := events.NewInMemoryDispatcher()

	var perception classifier.Classifier
	if cfg.Classifier.Mode == "http" && cfg.Classifier.EndpointURL != "" {
		perception = classifier.NewHTTPClassifier(cfg.Classifier.EndpointURL, &http.Client{})
	} else {
		perception = classifier.NewKeywordClassifier()
	}
	perception = classifier.NewCachedClassifier(perception, redis.Client, cfg.Classifier.CacheTTL(), logger)

	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:     taskRepo,
		ActivityRepo: activityRepo,
		Policy:       policy,
		Dispatcher:   dispatcher,
	})
	slaService := service.NewSLAService(taskRepo, policy)
	intakeService := service.NewIntakeService(service.IntakeDependencies{
		ComplaintRepo: complaintRepo,
		TaskService:   taskService,
		Classifier:    perception,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Budget:        cfg.Classifier.Timeout(),
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification, redis.Client)

	worker.StartNotificationWorker(notificationService)
	slaWorker := worker.NewSLAWorker(slaService, dispatcher, logger, cfg.SLA.ScanInterval())
	go slaWorker.Run(ctx)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Complaints: handlers.NewComplaintsHandler(intakeService),
		Tasks:      handlers.NewTasksHandler(taskService),
		Activity:   handlers.NewActivityHandler(taskService),
		SLA:        handlers.NewSLAHandler(slaService),
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
