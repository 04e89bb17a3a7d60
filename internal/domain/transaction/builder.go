package transaction

import (
	"time"

	"github.com/google/uuid"
)

// Builder assembles Records from extracted Fields. It owns identifier
// generation and the processing clock.
type Builder struct {
	now   func() time.Time
	newID func() string
}

// NewBuilder returns a Builder using the wall clock and random UUIDs.
func NewBuilder() *Builder {
	return &Builder{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// WithClock replaces the processing clock.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithIDGenerator replaces the record id generator.
func (b *Builder) WithIDGenerator(newID func() string) *Builder {
	b.newID = newID
	return b
}

// Now returns the current processing time.
func (b *Builder) Now() time.Time {
	return b.now()
}

// Build validates f and returns a new Record with id, timestamp and
// notification id assigned.
func (b *Builder) Build(f Fields) (*Record, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	processedAt := b.now()
	occurredAt := processedAt
	if f.OccurredAt != nil {
		occurredAt = *f.OccurredAt
	}

	paymentMethod := f.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = MethodUnknown
	}

	return &Record{
		ID:             b.newID(),
		Type:           f.Type,
		Amount:         f.Amount,
		Timestamp:      occurredAt.UnixMilli(),
		NotificationID: notificationID(processedAt),
		PaymentMethod:  paymentMethod,
		BankName:       f.BankName,
		AccountNumber:  f.AccountNumber,
		Payee:          f.Payee,
		Category:       f.Category,
		Balance:        f.Balance,
	}, nil
}

// notificationID truncates the processing time in milliseconds to 32 bits.
func notificationID(t time.Time) int32 {
	return int32(t.UnixMilli())
}
