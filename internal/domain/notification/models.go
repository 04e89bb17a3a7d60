package notification

import (
	"errors"
	"time"
)

// Device types
const (
	DeviceIOS     = "ios"
	DeviceAndroid = "android"
)

// Actions carried in the "action" data key of every message.
const (
	ActionAddTransaction = "ADD_TRANSACTION_FROM_SMS"
	ActionNewPending     = "NEW_PENDING_SMS"
	ActionCancel         = "CANCEL_NOTIFICATION"
)

// Data keys
const (
	KeyAction         = "action"
	KeyNotificationID = "notificationId"
	KeyTransaction    = "transaction"
)

// DefaultCurrencySymbol prefixes amounts in notification titles.
const DefaultCurrencySymbol = "₹"

// Domain errors
var (
	ErrDeviceTokenNotFound = errors.New("device token not found")
	ErrInvalidDeviceType   = errors.New("device type must be 'ios' or 'android'")
	ErrInvalidToken        = errors.New("device token is required")
)

// DeviceToken is a registered FCM device token.
type DeviceToken struct {
	ID         string    `json:"id"`
	Token      string    `json:"token"`
	DeviceType string    `json:"deviceType"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	LastUsed   time.Time `json:"lastUsed"`
}

// RegisterDeviceParams contains parameters for registering a device
type RegisterDeviceParams struct {
	Token      string
	DeviceType string
}

func (p RegisterDeviceParams) Validate() error {
	if p.Token == "" {
		return ErrInvalidToken
	}
	if !IsValidDeviceType(p.DeviceType) {
		return ErrInvalidDeviceType
	}
	return nil
}

func IsValidDeviceType(dt string) bool {
	return dt == DeviceIOS || dt == DeviceAndroid
}
