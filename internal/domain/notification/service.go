package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"smsledger/internal/domain/transaction"
)

// Service contains the business logic for notification operations
type Service struct {
	repo      Repository
	messenger Messenger
	format    Formatter
	log       zerolog.Logger
}

// NewService creates a new notification service. messenger may be nil, in
// which case messages are built and logged but not delivered.
func NewService(repo Repository, messenger Messenger, format Formatter, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		messenger: messenger,
		format:    format,
		log:       log.With().Str("component", "notification").Logger(),
	}
}

// RegisterDevice registers or reactivates a device token.
func (s *Service) RegisterDevice(ctx context.Context, params RegisterDeviceParams) (*DeviceToken, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpsertDeviceToken(ctx, params)
}

// DeactivateToken marks a token as no longer deliverable.
func (s *Service) DeactivateToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	return s.repo.DeactivateToken(ctx, token)
}

// NotifyTransaction sends the "tap to add" notification for a new pending record.
func (s *Service) NotifyTransaction(ctx context.Context, rec *transaction.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}

	title, body := s.format.Title(rec), s.format.Body(rec)
	data := map[string]string{
		KeyAction:         ActionAddTransaction,
		KeyNotificationID: strconv.FormatInt(int64(rec.NotificationID), 10),
		KeyTransaction:    string(payload),
	}

	tokens, err := s.activeTokens(ctx)
	if err != nil || len(tokens) == 0 {
		return err
	}

	s.log.Debug().Str("id", rec.ID).Str("title", title).Int("devices", len(tokens)).Msg("Sending transaction notification")
	return s.messenger.SendMulticast(ctx, tokens, title, body, data)
}

// SignalNewData tells clients the pending list changed.
func (s *Service) SignalNewData(ctx context.Context) error {
	return s.sendData(ctx, map[string]string{KeyAction: ActionNewPending})
}

// CancelNotification asks clients to dismiss the notification with the given id.
func (s *Service) CancelNotification(ctx context.Context, notificationID int32) error {
	return s.sendData(ctx, map[string]string{
		KeyAction:         ActionCancel,
		KeyNotificationID: strconv.FormatInt(int64(notificationID), 10),
	})
}

func (s *Service) sendData(ctx context.Context, data map[string]string) error {
	tokens, err := s.activeTokens(ctx)
	if err != nil || len(tokens) == 0 {
		return err
	}
	return s.messenger.SendDataOnly(ctx, tokens, data)
}

// activeTokens returns nothing when delivery is disabled or no device is registered.
func (s *Service) activeTokens(ctx context.Context) ([]string, error) {
	if s.messenger == nil {
		s.log.Debug().Msg("Messenger not configured, skipping delivery")
		return nil, nil
	}

	devices, err := s.repo.GetActiveTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("load device tokens: %w", err)
	}
	if len(devices) == 0 {
		s.log.Debug().Msg("No active device tokens")
		return nil, nil
	}

	tokens := make([]string, len(devices))
	for i, d := range devices {
		tokens[i] = d.Token
	}
	return tokens, nil
}
