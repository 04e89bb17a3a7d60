package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// KVStore keeps named documents as single blobs in kv_blobs.
type KVStore struct {
	db *DB
}

func NewKVStore(db *DB) *KVStore {
	return &KVStore{db: db}
}

// Get returns the blob stored under key. found is false when the key is absent.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_blobs WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Put replaces the blob stored under key.
func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, upsertBlob, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Update reads the blob under key with a row lock, passes it to fn and
// stores what fn returns. Concurrent updates of the same key are serialized.
// fn receives nil when the key does not exist yet.
func (s *KVStore) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	return s.db.WithTx(ctx, "kv.update", func(tx *sql.Tx) error {
		// Make sure there is a row to lock.
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO kv_blobs (key, value) VALUES ($1, ''::bytea) ON CONFLICT (key) DO NOTHING`, key,
		); err != nil {
			return fmt.Errorf("failed to initialise %s: %w", key, err)
		}

		var current []byte
		if err := tx.QueryRowContext(ctx,
			`SELECT value FROM kv_blobs WHERE key = $1 FOR UPDATE`, key,
		).Scan(&current); err != nil {
			return fmt.Errorf("failed to lock %s: %w", key, err)
		}
		if len(current) == 0 {
			current = nil
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, upsertBlob, key, next); err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
		return nil
	})
}

const upsertBlob = `
	INSERT INTO kv_blobs (key, value, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = NOW()
`
