package filestore

import (
	"context"

	"smsledger/internal/domain/rule"
	"smsledger/internal/domain/transaction"
)

// PendingRepository implements transaction.PendingRepository on a Store.
type PendingRepository struct {
	store *Store
}

func NewPendingRepository(store *Store) *PendingRepository {
	return &PendingRepository{store: store}
}

func (r *PendingRepository) Append(ctx context.Context, rec *transaction.Record) error {
	return r.store.Update(ctx, transaction.PendingKey, func(current []byte) ([]byte, error) {
		return transaction.EncodePending(append(transaction.DecodePending(current), rec))
	})
}

func (r *PendingRepository) List(ctx context.Context) ([]*transaction.Record, error) {
	raw, _, err := r.store.Get(ctx, transaction.PendingKey)
	if err != nil {
		return nil, err
	}
	return transaction.DecodePending(raw), nil
}

func (r *PendingRepository) Remove(ctx context.Context, id string) (*transaction.Record, error) {
	var removed *transaction.Record
	err := r.store.Update(ctx, transaction.PendingKey, func(current []byte) ([]byte, error) {
		rest, rec := transaction.RemoveByID(transaction.DecodePending(current), id)
		if rec == nil {
			return nil, transaction.ErrPendingNotFound
		}
		removed = rec
		return transaction.EncodePending(rest)
	})
	return removed, err
}

func (r *PendingRepository) Clear(ctx context.Context) (int, error) {
	var n int
	err := r.store.Update(ctx, transaction.PendingKey, func(current []byte) ([]byte, error) {
		n = len(transaction.DecodePending(current))
		return transaction.EncodePending(nil)
	})
	return n, err
}

// RuleRepository implements rule.OverrideRepository on a Store.
type RuleRepository struct {
	store *Store
}

func NewRuleRepository(store *Store) *RuleRepository {
	return &RuleRepository{store: store}
}

func (r *RuleRepository) Load(ctx context.Context) ([]byte, bool, error) {
	return r.store.Get(ctx, rule.DocumentName)
}

func (r *RuleRepository) Save(ctx context.Context, raw []byte) error {
	return r.store.Put(ctx, rule.DocumentName, raw)
}
