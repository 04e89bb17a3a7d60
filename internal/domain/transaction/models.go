package transaction

import (
	"errors"
	"time"
)

// Transaction directions
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Payment methods produced by the classifiers. Rules may supply any other string.
const (
	MethodUPI        = "UPI"
	MethodNetBanking = "Net banking"
	MethodCard       = "Card"
	MethodOther      = "Other"
	MethodUnknown    = "Unknown"
)

// PendingKey is the well-known storage key of the pending list.
const PendingKey = "pending_transactions"

var (
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrInvalidType     = errors.New("type must be 'income' or 'expense'")
	ErrPendingNotFound = errors.New("pending transaction not found")
	ErrMissingID       = errors.New("transaction id is required")
)

// Record is a transaction candidate extracted from a message, awaiting user confirmation.
// Optional fields are omitted from JSON when absent.
type Record struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Amount         float64  `json:"amount"`
	Timestamp      int64    `json:"timestamp"` // epoch milliseconds
	NotificationID int32    `json:"notificationId"`
	PaymentMethod  string   `json:"paymentMethod"`
	BankName       *string  `json:"bankName,omitempty"`
	AccountNumber  *string  `json:"accountNumber,omitempty"`
	Payee          *string  `json:"payee,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Balance        *float64 `json:"balance,omitempty"`
}

// Time returns the record timestamp as a time.Time.
func (r *Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Validate checks the invariants every stored record must satisfy.
func (r *Record) Validate() error {
	if r.ID == "" {
		return ErrMissingID
	}
	if !IsValidType(r.Type) {
		return ErrInvalidType
	}
	if !(r.Amount > 0) {
		return ErrInvalidAmount
	}
	return nil
}

// Fields is what a classifier extracted from one message, before identifiers
// and defaults are assigned.
type Fields struct {
	Type          string
	Amount        float64
	OccurredAt    *time.Time // nil means processing time
	PaymentMethod string
	BankName      *string
	AccountNumber *string
	Payee         *string
	Category      *string
	Balance       *float64
}

// Validate checks the mandatory fields.
func (f Fields) Validate() error {
	if !IsValidType(f.Type) {
		return ErrInvalidType
	}
	if !(f.Amount > 0) {
		return ErrInvalidAmount
	}
	return nil
}

// IsValidType reports whether t is income or expense.
func IsValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}
