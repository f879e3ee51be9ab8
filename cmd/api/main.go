package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/opskit/absence-service/internal/api/http"
	"github.com/opskit/absence-service/internal/api/http/handlers"
	"github.com/opskit/absence-service/internal/auth"
	"github.com/opskit/absence-service/internal/config"
	"github.com/opskit/absence-service/internal/events"
	"github.com/opskit/absence-service/internal/observability"
	"github.com/opskit/absence-service/internal/persistence"
	"github.com/opskit/absence-service/internal/repository"
	"github.com/opskit/absence-service/internal/service"
	"github.com/opskit/absence-service/internal/worker"
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
	employeeRepo := repository.NewEmployeeRepository(pool)
	absenceRepo := repository.NewAbsenceRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	resetRepo := repository.NewResetTokenRepository(redis.Client)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	resolver := service.NewRoleResolver(cfg.Workflow, service.RoleResolverDependencies{
		AccountRepo:  accountRepo,
		EmployeeRepo: employeeRepo,
		Cache:        redis.Client,
		Logger:       logger,
	})
	auditService := service.NewAuditService(auditRepo, logger)
	absenceService := service.NewAbsenceService(cfg.Workflow, service.AbsenceDependencies{
		AbsenceRepo:  absenceRepo,
		EmployeeRepo: employeeRepo,
		Resolver:     resolver,
		Audit:        auditService,
		Dispatcher:   dispatcher,
	})
	employeeService := service.NewEmployeeService(employeeRepo, resolver)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AccountRepo:    accountRepo,
		ResetTokenRepo: resetRepo,
		Logger:         logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Absences:       handlers.NewAbsencesHandler(absenceService),
		Employees:      handlers.NewEmployeesHandler(employeeService),
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
