package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"smsledger/internal/domain/rule"
)

// RuleUpdateChannel is the NOTIFY channel raised when the rule override changes.
const RuleUpdateChannel = "sms_rules_updated"

// RuleUpdateEvent is the NOTIFY payload.
type RuleUpdateEvent struct {
	Key  string `json:"key"`
	Size int    `json:"size"`
}

// RuleRepository stores the rule override document in kv_blobs and tells
// other instances about changes through NOTIFY.
type RuleRepository struct {
	db *DB
	kv *KVStore
}

func NewRuleRepository(db *DB, kv *KVStore) *RuleRepository {
	return &RuleRepository{db: db, kv: kv}
}

func (r *RuleRepository) Load(ctx context.Context) ([]byte, bool, error) {
	return r.kv.Get(ctx, rule.DocumentName)
}

// Save writes raw verbatim and notifies listeners in the same transaction,
// so the notification is only delivered once the write is visible.
func (r *RuleRepository) Save(ctx context.Context, raw []byte) error {
	payload, err := json.Marshal(RuleUpdateEvent{Key: rule.DocumentName, Size: len(raw)})
	if err != nil {
		return err
	}

	return r.db.WithTx(ctx, "rules.save", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upsertBlob, rule.DocumentName, raw); err != nil {
			return fmt.Errorf("failed to save rule document: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, RuleUpdateChannel, string(payload)); err != nil {
			return fmt.Errorf("failed to notify rule update: %w", err)
		}
		return nil
	})
}
