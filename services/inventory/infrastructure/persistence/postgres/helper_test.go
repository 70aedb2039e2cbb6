package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	migrations "github.com/ghuser/larder/migrations/inventory"
	"github.com/ghuser/larder/pkg/config"
	"github.com/ghuser/larder/pkg/database"
	"github.com/ghuser/larder/pkg/logger"
	"github.com/ghuser/larder/pkg/migrator"
)

var (
	once      sync.Once
	sharedDSN string
	initErr   error
)

// setupDB starts one PostgreSQL container for the whole test run, applies the
// inventory migrations and returns a Database connected to it. Tests share
// the schema, so each one works on freshly generated ids.
func setupDB(t *testing.T) *database.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode (requires Docker)")
	}

	once.Do(func() {
		sharedDSN, initErr = startContainerAndMigrate()
	})
	if initErr != nil {
		t.Fatalf("setup test database: %v", initErr)
	}

	db, err := sql.Open("pgx", sharedDSN)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return database.New(db, testLogger())
}

func testLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

func startContainerAndMigrate() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "larder",
				"POSTGRES_PASSWORD": "larder",
				"POSTGRES_DB":       "larder_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://larder:larder@%s:%s/larder_test?sslmode=disable", host, port.Port())
	if err := migrator.RunMigrations(ctx, dsn, migrations.FS, testLogger()); err != nil {
		return "", err
	}
	return dsn, nil
}
