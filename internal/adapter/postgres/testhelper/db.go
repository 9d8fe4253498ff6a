// Package testhelper provisions the PostgreSQL database used by repository
// and end-to-end tests.
package testhelper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/heartmarshall/quotediary-backend/migrations"
)

// DSNEnv points the tests at an existing database instead of a container.
const DSNEnv = "QUOTEDIARY_TEST_DSN"

const (
	postgresImage  = "postgres:17-alpine"
	startupTimeout = 2 * time.Minute
)

var (
	once      sync.Once
	sharedDSN string
	initErr   error
)

// SetupTestDB returns a pool on a migrated database shared by the whole
// test binary. Rows are never cleaned up, so tests must scope their data
// to freshly generated user IDs. Skipped under -short.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("database tests skipped in short mode")
	}

	once.Do(func() {
		sharedDSN, initErr = provision()
	})
	if initErr != nil {
		t.Fatalf("testhelper: %v", initErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, sharedDSN)
	if err != nil {
		t.Fatalf("testhelper: connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func provision() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		var err error
		if dsn, err = startPostgres(ctx); err != nil {
			return "", err
		}
	}
	if err := migrate(ctx, dsn); err != nil {
		return "", err
	}
	return dsn, nil
}

// startPostgres runs a throwaway container. Ryuk reaps it when the test
// binary exits.
func startPostgres(ctx context.Context) (string, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "diary",
				"POSTGRES_PASSWORD": "diary",
				"POSTGRES_DB":       "quotediary_test",
			},
			// The entrypoint restarts postgres once after init.
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("container port: %w", err)
	}
	return fmt.Sprintf("postgres://diary:diary@%s:%s/quotediary_test?sslmode=disable", host, port.Port()), nil
}

func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
