package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/gs-sport/storefront/internal/api/http"
	"github.com/gs-sport/storefront/internal/api/http/handlers"
	"github.com/gs-sport/storefront/internal/auth"
	"github.com/gs-sport/storefront/internal/config"
	"github.com/gs-sport/storefront/internal/events"
	"github.com/gs-sport/storefront/internal/observability"
	"github.com/gs-sport/storefront/internal/persistence"
	"github.com/gs-sport/storefront/internal/presence"
	"github.com/gs-sport/storefront/internal/repository"
	"github.com/gs-sport/storefront/internal/security"
	"github.com/gs-sport/storefront/internal/service"
	"github.com/gs-sport/storefront/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	displayAppName(cfg.App.Name)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	readiness := map[string]handlers.Pinger{"postgres": pg}
	var store presence.Store
	switch cfg.Presence.Backend {
	case config.PresenceBackendRedis:
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer rdb.Close()
		readiness["redis"] = rdb
		store = presence.NewRedisStore(rdb.Client, presence.DefaultRedisKey)
	case config.PresenceBackendMemory:
		store = presence.NewMemoryStore()
	default:
		store = repository.NewPresenceRepository(pg.Pool)
	}
	logger.Info("presence backend selected", zap.String("backend", cfg.Presence.Backend))

	tracker := presence.NewTracker(store, logger.Named("presence"), presence.Options{
		OnlineWindow: cfg.Presence.OnlineWindow(),
		RetainWindow: cfg.Presence.RetainWindow(),
		Observer:     metrics,
	})

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger)

	userRepo := repository.NewUserRepository(pg.Pool)
	orderRepo := repository.NewOrderRepository(pg.Pool)
	productRepo := repository.NewProductRepository(pg.Pool)
	sanitizer := security.NewSanitizer()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret)
	resolver := auth.NewSessionResolver(tokens)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:  userRepo,
		Tokens:    tokens,
		Sanitizer: sanitizer,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:   orderRepo,
		ProductRepo: productRepo,
		Sanitizer:   sanitizer,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	limiter := httptransport.NewRateLimiter(httptransport.RateLimiterConfig{
		PerMinute: cfg.RateLimit.PerMinute,
		Burst:     cfg.RateLimit.Burst,
	}, logger)
	defer limiter.Stop()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ErrorHandler:          httptransport.ErrorHandler,
		DisableStartupMessage: cfg.App.IsProduction(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness, logger.Named("health")),
		Auth:        handlers.NewAuthHandler(authService, cfg.App.IsProduction()),
		Presence:    handlers.NewPresenceHandler(tracker),
		Admin:       handlers.NewAdminHandler(adminService, orderService),
		Orders:      handlers.NewOrdersHandler(orderService),
		Resolver:    resolver,
		AuthLimiter: limiter,
		Metrics:     metrics,
		StaticDir:   cfg.App.StaticDir,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func displayAppName(name string) {
	banner := figure.NewFigure(name, "cybermedium", true)
	banner.Print()
	fmt.Println()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
