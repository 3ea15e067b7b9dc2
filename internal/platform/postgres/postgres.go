// Package postgres opens the PostgreSQL handle and applies the schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"pinguard/internal/platform/config"
	"pinguard/pkg/platform/tx"
)

// Schema creates the credential and attempt tables. Statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS vendor_pin_credentials (
		vendor_id   BIGINT PRIMARY KEY,
		hashed_pin  TEXT NOT NULL,
		salt        TEXT NOT NULL,
		expires_at  TIMESTAMPTZ,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pin_attempts (
		id           UUID PRIMARY KEY,
		scope        TEXT NOT NULL,
		attempted_at TIMESTAMPTZ NOT NULL,
		success      BOOLEAN NOT NULL,
		device       TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pin_attempts_scope_time ON pin_attempts (scope, attempted_at)`,
}

// Open connects through the pgx stdlib driver, applies pool limits and pings.
// Returns nil, nil when no URL is configured.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema applies Schema in a single transaction.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	return tx.Run(ctx, db, func(ctx context.Context) error {
		q := tx.Or(ctx, db)
		for _, stmt := range Schema {
			if _, err := q.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return nil
	})
}
