// Command migrate applies the inventory schema migrations and exits. The API
// also runs them at startup; this binary is for deploy pipelines that migrate
// before rolling out new instances.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	migrations "github.com/ghuser/larder/migrations/inventory"
	"github.com/ghuser/larder/pkg/config"
	"github.com/ghuser/larder/pkg/logger"
	"github.com/ghuser/larder/pkg/migrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	if !cfg.UsesPostgres() {
		log.Info("memory storage driver selected; nothing to migrate")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := migrator.RunMigrations(ctx, cfg.DatabaseURL, migrations.FS, log); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("migrations complete")
}
