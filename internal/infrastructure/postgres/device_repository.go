package postgres

import (
	"context"
	"fmt"

	"smsledger/internal/domain/notification"
)

type DeviceRepository struct {
	db *DB
}

func NewDeviceRepository(db *DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// UpsertDeviceToken registers a token, reactivating it if it was deactivated.
func (r *DeviceRepository) UpsertDeviceToken(ctx context.Context, params notification.RegisterDeviceParams) (*notification.DeviceToken, error) {
	query := `
		INSERT INTO fcm_device_tokens (token, device_type)
		VALUES ($1, $2)
		ON CONFLICT (token) DO UPDATE
			SET device_type = EXCLUDED.device_type,
			    is_active = true,
			    last_used = NOW()
		RETURNING id, token, device_type, is_active, created_at, last_used
	`

	var dt notification.DeviceToken
	err := r.db.QueryRowContext(ctx, query, params.Token, params.DeviceType).Scan(
		&dt.ID, &dt.Token, &dt.DeviceType, &dt.IsActive, &dt.CreatedAt, &dt.LastUsed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert device token: %w", err)
	}

	return &dt, nil
}

func (r *DeviceRepository) GetActiveTokens(ctx context.Context) ([]*notification.DeviceToken, error) {
	query := `
		SELECT id, token, device_type, is_active, created_at, last_used
		FROM fcm_device_tokens
		WHERE is_active = true
		ORDER BY last_used DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*notification.DeviceToken
	for rows.Next() {
		var dt notification.DeviceToken
		if err := rows.Scan(&dt.ID, &dt.Token, &dt.DeviceType, &dt.IsActive, &dt.CreatedAt, &dt.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, &dt)
	}

	return tokens, rows.Err()
}

func (r *DeviceRepository) DeactivateToken(ctx context.Context, token string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE fcm_device_tokens SET is_active = false WHERE token = $1`, token,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate device token: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return notification.ErrDeviceTokenNotFound
	}
	return nil
}
