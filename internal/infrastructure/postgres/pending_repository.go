package postgres

import (
	"context"

	"smsledger/internal/domain/transaction"
)

// PendingRepository stores the pending list as one JSON array under
// transaction.PendingKey.
type PendingRepository struct {
	kv *KVStore
}

func NewPendingRepository(kv *KVStore) *PendingRepository {
	return &PendingRepository{kv: kv}
}

func (r *PendingRepository) Append(ctx context.Context, rec *transaction.Record) error {
	return r.kv.Update(ctx, transaction.PendingKey, func(current []byte) ([]byte, error) {
		records := append(transaction.DecodePending(current), rec)
		return transaction.EncodePending(records)
	})
}

func (r *PendingRepository) List(ctx context.Context) ([]*transaction.Record, error) {
	raw, _, err := r.kv.Get(ctx, transaction.PendingKey)
	if err != nil {
		return nil, err
	}
	return transaction.DecodePending(raw), nil
}

func (r *PendingRepository) Remove(ctx context.Context, id string) (*transaction.Record, error) {
	var removed *transaction.Record
	err := r.kv.Update(ctx, transaction.PendingKey, func(current []byte) ([]byte, error) {
		rest, rec := transaction.RemoveByID(transaction.DecodePending(current), id)
		if rec == nil {
			return nil, transaction.ErrPendingNotFound
		}
		removed = rec
		return transaction.EncodePending(rest)
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *PendingRepository) Clear(ctx context.Context) (int, error) {
	var n int
	err := r.kv.Update(ctx, transaction.PendingKey, func(current []byte) ([]byte, error) {
		n = len(transaction.DecodePending(current))
		return transaction.EncodePending(nil)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
