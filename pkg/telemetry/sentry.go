package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/ghuser/larder/pkg/auth"
	"github.com/ghuser/larder/pkg/config"
	"github.com/ghuser/larder/pkg/errhttp"
)

// SetupSentry initializes the Sentry SDK. No-ops if DSN is empty.
func SetupSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.ServiceName + "@" + cfg.ServiceVersion,
		TracesSampleRate: cfg.TraceSampleRatio,
		BeforeSend:       dropExpected,
	}); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

// dropExpected discards events for errors that map to a 4xx response.
func dropExpected(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if hint == nil || hint.OriginalException == nil {
		return event
	}
	if errhttp.StatusFor(hint.OriginalException) < http.StatusInternalServerError {
		return nil
	}
	return event
}

// SentryFlush flushes buffered events before process exit.
func SentryFlush() {
	sentry.Flush(2 * time.Second)
}

// SentryMiddleware returns a net/http middleware that captures panics and errors.
// Repanic: true so the outer Recovery middleware still handles the 500 response.
func SentryMiddleware() func(http.Handler) http.Handler {
	h := sentryhttp.New(sentryhttp.Options{Repanic: true})
	return h.Handle
}

// SentryIdentity tags the request's Sentry scope with the authenticated
// caller. Mount it after auth.RequireAuth.
func SentryIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		id, err := auth.IdentityFromCtx(r.Context())
		if hub != nil && err == nil {
			hub.Scope().SetUser(sentry.User{ID: id.UserID.String()})
			hub.Scope().SetTag("role", id.Role)
			if id.ChefID != nil {
				hub.Scope().SetTag("chef_id", id.ChefID.String())
			}
		}
		next.ServeHTTP(w, r)
	})
}
