package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is satisfied by any dependency exposing Ping
// (database.Database, cache.RedisClient, events.EventBus and
// workflows.TemporalClient all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks lists the dependencies checked by the health endpoint. A nil
// checker is reported as "disabled": the memory storage driver runs without
// a database, and Redis is optional.
type HealthChecks struct {
	Database HealthChecker
	Redis    HealthChecker
	EventBus HealthChecker

	// Workflows is the Temporal frontend, set only with TEMPORAL_ENABLED.
	Workflows HealthChecker
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
	EventBus  string `json:"event_bus"`
	Workflows string `json:"workflows"`
}

const (
	checkOK          = "ok"
	checkDisabled    = "disabled"
	checkUnreachable = "unreachable"
)

// HealthHandler checks every configured checker and answers 503 with a
// "degraded" status if any of them fails.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{
			Status:    checkOK,
			Database:  checkOne(ctx, checks.Database),
			Redis:     checkOne(ctx, checks.Redis),
			EventBus:  checkOne(ctx, checks.EventBus),
			Workflows: checkOne(ctx, checks.Workflows),
		}
		for _, s := range []string{resp.Database, resp.Redis, resp.EventBus, resp.Workflows} {
			if s == checkUnreachable {
				resp.Status = "degraded"
			}
		}

		status := http.StatusOK
		if resp.Status != checkOK {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}

func checkOne(ctx context.Context, c HealthChecker) string {
	if c == nil {
		return checkDisabled
	}
	if err := c.Ping(ctx); err != nil {
		return checkUnreachable
	}
	return checkOK
}
