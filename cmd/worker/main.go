package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/larder/pkg/app"
	"github.com/ghuser/larder/pkg/cache"
	"github.com/ghuser/larder/pkg/config"
	"github.com/ghuser/larder/pkg/database"
	"github.com/ghuser/larder/pkg/events"
	"github.com/ghuser/larder/pkg/logger"
	"github.com/ghuser/larder/pkg/telemetry"
	appsvcs "github.com/ghuser/larder/services/inventory/application/services"
	"github.com/ghuser/larder/services/inventory/domain"
	inventoryEvents "github.com/ghuser/larder/services/inventory/domain/events"
	"github.com/ghuser/larder/services/inventory/domain/models"
	domainsvcs "github.com/ghuser/larder/services/inventory/domain/services"
)

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

	if !cfg.UsesPostgres() {
		log.Error("the worker consumes the postgres outbox; STORAGE_DRIVER=memory has no events to consume")
		os.Exit(1)
	}

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close() //nolint:errcheck
	log.Info("database pool connected")

	eventBus, err := events.New(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	appConfig := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
	}

	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")
		appConfig.Redis = redisClient
	}

	svcs := appsvcs.New(appConfig)

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := registerSubscribers(subCtx, appConfig, svcs); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers.
func registerSubscribers(ctx context.Context, a *app.Application, svcs *appsvcs.Services) error {
	errCh, err := a.EventBus.Subscribe(ctx, inventoryEvents.TopicMovementRecorded, handleMovementRecorded(svcs.Ledger, a.Logger))
	if err != nil {
		return err
	}

	// Drain subscriber errors in background so the channel never blocks.
	go func() {
		for err := range errCh {
			a.Logger.ErrorContext(ctx, "subscriber error",
				"topic", inventoryEvents.TopicMovementRecorded,
				"error", err,
			)
		}
	}()

	a.Logger.Info("event subscribers registered", "topics", []string{inventoryEvents.TopicMovementRecorded})
	return nil
}

type stockStatus interface {
	Status(ctx context.Context, key models.OwnerKey) (appsvcs.StockLine, error)
}

// handleMovementRecorded warns when the key a movement touched is below its
// item's minimum stock. A failed lookup is retried by the bus; a repeated
// delivery only repeats the warning.
func handleMovementRecorded(ledger stockStatus, log logger.Logger) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt inventoryEvents.MovementRecordedEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return events.Permanent(fmt.Errorf("malformed %s payload: %w", inventoryEvents.TopicMovementRecorded, err))
		}

		key := models.NewOwnerKey(evt.ItemID, evt.Owner())
		line, err := ledger.Status(ctx, key)
		if errors.Is(err, domain.ErrItemNotFound) {
			log.DebugContext(ctx, "movement for deleted item", "movement_id", evt.MovementID, "item_id", evt.ItemID)
			return nil
		}
		if err != nil {
			return err
		}

		if domainsvcs.IsLow(line.Item, line.OnHand) {
			log.WarnContext(ctx, "stock below minimum",
				"item_id", line.Item.ID,
				"item", line.Item.Name.String(),
				"owner", line.Owner.String(),
				"on_hand", line.OnHand.String(),
				"min_stock", line.Item.MinStock.String(),
				"movement_id", evt.MovementID,
			)
		}
		return nil
	}
}
