package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/larder/docs/swagger"
	migrations "github.com/ghuser/larder/migrations/inventory"
	"github.com/ghuser/larder/pkg/app"
	"github.com/ghuser/larder/pkg/auth"
	"github.com/ghuser/larder/pkg/cache"
	"github.com/ghuser/larder/pkg/config"
	"github.com/ghuser/larder/pkg/database"
	"github.com/ghuser/larder/pkg/errhttp"
	"github.com/ghuser/larder/pkg/events"
	"github.com/ghuser/larder/pkg/httpx"
	"github.com/ghuser/larder/pkg/logger"
	"github.com/ghuser/larder/pkg/migrator"
	"github.com/ghuser/larder/pkg/telemetry"
	"github.com/ghuser/larder/pkg/workflows"
	inventoryApi "github.com/ghuser/larder/services/inventory/application/api"
	"github.com/ghuser/larder/services/inventory/application/handlers"
	appsvcs "github.com/ghuser/larder/services/inventory/application/services"
	importflow "github.com/ghuser/larder/services/inventory/application/workflows"
)

// @title			Larder API
// @version		1.0
// @description	Multi-tenant kitchen inventory: catalog, stock movement ledger and audit log.
// @license.name	MIT
// @license.url	https://opensource.org/licenses/MIT
// @host			localhost:8080
// @BasePath		/api
// @schemes		http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)
	errhttp.HideInternalErrors(cfg.Environment == config.EnvProduction)

	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	appConfig := &app.Application{
		Config: cfg,
		Logger: log,
		Tokens: auth.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer),
	}
	var health httpx.HealthChecks

	if cfg.UsesPostgres() {
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
		}
		defer pool.Close() //nolint:errcheck
		log.Info("database pool connected")

		if err := migrator.Up(ctx, pool.DB(), migrations.FS, log); err != nil {
			log.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}

		eventBus, err := events.New(cfg, log, events.WithForwarder())
		if err != nil {
			log.Error("failed to setup event bus", "error", err)
			os.Exit(1)
		}
		defer eventBus.Close() //nolint:errcheck

		if err := eventBus.StartForwarder(ctx); err != nil {
			log.Error("failed to start event forwarder", "error", err)
			os.Exit(1)
		}

		appConfig.Db = pool
		appConfig.EventBus = eventBus
		health.Database = pool
		health.EventBus = eventBus
	} else {
		log.Warn("memory storage driver selected; data is lost on restart")
	}

	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")

		appConfig.Redis = redisClient
		health.Redis = redisClient
	}

	appConfig.SessionStore = auth.NewSessionStore(cfg, appConfig.Redis)

	svcs := appsvcs.New(appConfig)

	var imports handlers.ImportStarter
	if cfg.TemporalEnabled {
		temporalClient, err := workflows.NewTemporalClient(ctx, cfg, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1)
		}
		defer temporalClient.Close()
		appConfig.TemporalClient = temporalClient
		health.Workflows = temporalClient

		// The worker shares svcs so imports land in the same store the API
		// reads from, including with the memory driver.
		w := temporalClient.NewWorker()
		importflow.Register(w, svcs.Ledger)
		if err := w.Start(); err != nil {
			log.Error("failed to start temporal worker", "error", err)
			os.Exit(1)
		}
		defer w.Stop()
		log.Info("temporal worker started", "task_queue", temporalClient.TaskQueue)

		imports = importflow.NewStarter(temporalClient.Client, temporalClient.TaskQueue)
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			MaxBodyBytes:       cfg.MaxBodyBytes,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	r.Get("/health", httpx.HealthHandler(health))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		r.Post("/session", auth.SessionHandler(appConfig.SessionStore, appConfig.Tokens, log))
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(appConfig.SessionStore, appConfig.Tokens, log))
			r.Use(telemetry.SentryIdentity)
			registerRoutes(r, svcs, imports)
		})
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// registerRoutes mounts all service routes under /api.
func registerRoutes(r chi.Router, svcs *appsvcs.Services, imports handlers.ImportStarter) {
	inventoryApi.InventoryRoutes(r, svcs, imports)
}
