// Package testutil provides test fixtures that need external services.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// SetupPostgres starts a PostgreSQL container, applies migrations and
// returns a manager connected to it. Everything is torn down with the test.
func SetupPostgres(t testing.TB) *repomanager.PostgresRepositoryManager {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("taskkeeper_test"),
		postgres.WithUsername("taskkeeper"),
		postgres.WithPassword("taskkeeper"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	m, err := repomanager.OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })

	if err := m.Ping(ctx); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}
	if err := m.RunMigrations(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return m
}
