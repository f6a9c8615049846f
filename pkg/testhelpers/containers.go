// Package testhelpers provides shared infrastructure for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresImage is the stock PostgreSQL image used for integration tests.
const PostgresImage = "postgres:17-alpine"

const (
	postgresUser     = "sqlbridge"
	postgresPassword = "test_password"
	postgresDatabase = "bridge_test"
)

// TestPostgres holds a shared PostgreSQL container for integration tests.
type TestPostgres struct {
	Container *postgres.PostgresContainer
	URL       string
}

var (
	sharedPG     *TestPostgres
	sharedPGOnce sync.Once
	sharedPGErr  error
)

// GetPostgres returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the run.
func GetPostgres(t *testing.T) *TestPostgres {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedPGOnce.Do(func() {
		sharedPG, sharedPGErr = startPostgres()
	})

	if sharedPGErr != nil {
		t.Fatalf("Failed to start test database: %v", sharedPGErr)
	}

	return sharedPG
}

func startPostgres() (*TestPostgres, error) {
	ctx := context.Background()

	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(postgresUser),
		postgres.WithPassword(postgresPassword),
		postgres.WithDatabase(postgresDatabase),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &TestPostgres{Container: ctr, URL: url}, nil
}
