package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/larder/pkg/auth"
	"github.com/ghuser/larder/pkg/cache"
	"github.com/ghuser/larder/pkg/config"
	"github.com/ghuser/larder/pkg/database"
	"github.com/ghuser/larder/pkg/events"
	"github.com/ghuser/larder/pkg/logger"
	"github.com/ghuser/larder/pkg/workflows"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to all service Routes calls during server initialization.
//
// Optional dependencies are nil when not configured:
//   - Db and EventBus are nil with STORAGE_DRIVER=memory
//   - Redis and SessionStore are nil when REDIS_URL is empty
//   - TemporalClient is nil unless TEMPORAL_ENABLED=true
//
// Logging: app.Logger is backed by a trace-aware handler; use slog's context
// methods and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "movement recorded", "movement_id", id)
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient
	SessionStore   sessions.Store
	Tokens         *auth.TokenVerifier
}
