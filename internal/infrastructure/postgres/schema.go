package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS kv_blobs (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS fcm_device_tokens (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		token       TEXT NOT NULL UNIQUE,
		device_type TEXT NOT NULL CHECK (device_type IN ('ios', 'android')),
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_used   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fcm_device_tokens_active ON fcm_device_tokens (is_active)`,
}

// CreateTables creates the tables the service needs when they are missing.
func (db *DB) CreateTables(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
