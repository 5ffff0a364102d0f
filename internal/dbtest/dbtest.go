// Package dbtest provides a migrated Postgres pool for integration tests.
// Tests using it are skipped unless TEST_DB_DSN is set.
package dbtest

import (
	"context"
	"os"
	"testing"

	"customer-api/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool connects to TEST_DB_DSN, applies migrations and truncates all tables.
// The pool is closed when the test finishes.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping postgres integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("ping db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	Reset(t, pool)
	return pool
}

// Reset empties every application table.
func Reset(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	const q = `TRUNCATE personal_access_tokens, users, customers RESTART IDENTITY CASCADE`
	if _, err := pool.Exec(context.Background(), q); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
