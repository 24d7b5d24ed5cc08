package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Database wraps the pgx connection pool shared by the registry and license
// repositories.
type Database struct {
	pool *pgxpool.Pool
}

// New opens a pool for the given DSN and verifies connectivity.
func New(ctx context.Context, dsn string) (*Database, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{pool: pool}, nil
}

// Pool exposes the underlying pool for repositories.
func (d *Database) Pool() *pgxpool.Pool {
	return d.pool
}

// Ping verifies the pool is still reachable.
func (d *Database) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Close releases all pooled connections.
func (d *Database) Close() {
	d.pool.Close()
}

// EnsureSchema creates the registry tables when missing. The schema survives
// process restarts; data is never dropped here.
func (d *Database) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS customer_instances (
			customer_id    TEXT PRIMARY KEY,
			version        TEXT NOT NULL,
			url            TEXT NOT NULL DEFAULT '',
			health_status  TEXT NOT NULL DEFAULT 'unknown',
			last_heartbeat TIMESTAMPTZ NOT NULL,
			first_seen     TIMESTAMPTZ NOT NULL,
			total_users    BIGINT NOT NULL DEFAULT 0,
			total_messages BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS version_history (
			id          BIGSERIAL PRIMARY KEY,
			customer_id TEXT NOT NULL,
			old_version TEXT NOT NULL DEFAULT '',
			new_version TEXT NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_version_history_customer
			ON version_history (customer_id, id)`,
	}

	for _, q := range stmts {
		if _, err := d.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to ensure registry schema: %w", err)
		}
	}
	return nil
}
