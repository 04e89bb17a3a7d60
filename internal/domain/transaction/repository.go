package transaction

import "context"

// PendingRepository persists the pending list as a single blob under PendingKey.
// Implemented by the postgres and file adapters in the infrastructure layer.
type PendingRepository interface {
	// Append adds rec to the end of the list.
	Append(ctx context.Context, rec *Record) error
	List(ctx context.Context) ([]*Record, error)
	// Remove deletes the record with the given id and returns it.
	// Returns ErrPendingNotFound when no record has that id.
	Remove(ctx context.Context, id string) (*Record, error)
	// Clear empties the list and returns how many records were dropped.
	Clear(ctx context.Context) (int, error)
}
