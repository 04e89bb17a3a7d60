package notification

import "context"

// Repository defines the interface for device token storage.
// Defined in the domain layer, implemented in the infrastructure layer.
type Repository interface {
	UpsertDeviceToken(ctx context.Context, params RegisterDeviceParams) (*DeviceToken, error)
	GetActiveTokens(ctx context.Context) ([]*DeviceToken, error)
	DeactivateToken(ctx context.Context, token string) error
}
