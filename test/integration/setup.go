package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"candle-labels/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container, connects and applies the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("labels"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.Connect(ctx, connStr, database.DefaultPoolSettings(), logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedCandles inserts n active candles named "Candle 1".."Candle n" and returns their ids
// in insertion order.
func SeedCandles(t *testing.T, pool *pgxpool.Pool, n int) []int64 {
	t.Helper()

	ctx := context.Background()
	ids := make([]int64, 0, n)

	for i := 1; i <= n; i++ {
		var id int64
		err := pool.QueryRow(ctx,
			`INSERT INTO candles (name, description, practice, quantity)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			fmt.Sprintf("Candle %d", i), "Описание", "Практика", i,
		).Scan(&id)
		if err != nil {
			t.Fatalf("failed to seed candle %d: %v", i, err)
		}
		ids = append(ids, id)
	}

	return ids
}

// CleanupDB removes all rows and restarts the id and sequence counters.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		TRUNCATE label_set_candles, label_sets, candles, categories RESTART IDENTITY CASCADE;
		ALTER SEQUENCE candle_sequence_seq RESTART WITH 1;
	`)
	if err != nil {
		t.Fatalf("failed to clean database: %v", err)
	}
}
