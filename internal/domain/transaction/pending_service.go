package transaction

import (
	"context"

	"github.com/rs/zerolog"
)

// NotificationCanceller withdraws the notification shown for a record.
type NotificationCanceller interface {
	CancelNotification(ctx context.Context, notificationID int32) error
}

// PendingService exposes the consumer-side operations on the pending list.
// The parsing core only appends; removal happens here on user action.
type PendingService struct {
	repo      PendingRepository
	canceller NotificationCanceller
	log       zerolog.Logger
}

// NewPendingService creates a PendingService. canceller may be nil.
func NewPendingService(repo PendingRepository, canceller NotificationCanceller, log zerolog.Logger) *PendingService {
	return &PendingService{repo: repo, canceller: canceller, log: log}
}

// List returns every pending record in insertion order.
func (s *PendingService) List(ctx context.Context) ([]*Record, error) {
	return s.repo.List(ctx)
}

// Remove drops one record (user confirmed or dismissed it) and withdraws its notification.
func (s *PendingService) Remove(ctx context.Context, id string) (*Record, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	rec, err := s.repo.Remove(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.canceller != nil {
		if err := s.canceller.CancelNotification(ctx, rec.NotificationID); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("failed to cancel notification")
		}
	}

	return rec, nil
}

// Restore puts back a record previously removed by the consumer (undo).
// Restoring a record that is already pending is a no-op.
func (s *PendingService) Restore(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	if ContainsID(existing, rec.ID) {
		return nil
	}

	return s.repo.Append(ctx, rec)
}

// Clear drops every pending record and withdraws their notifications.
func (s *PendingService) Clear(ctx context.Context) (int, error) {
	var records []*Record
	if s.canceller != nil {
		var err error
		if records, err = s.repo.List(ctx); err != nil {
			return 0, err
		}
	}

	n, err := s.repo.Clear(ctx)
	if err != nil {
		return 0, err
	}

	for _, rec := range records {
		if err := s.canceller.CancelNotification(ctx, rec.NotificationID); err != nil {
			s.log.Warn().Err(err).Str("id", rec.ID).Msg("failed to cancel notification")
		}
	}

	s.log.Info().Int("count", n).Msg("pending list cleared")
	return n, nil
}
