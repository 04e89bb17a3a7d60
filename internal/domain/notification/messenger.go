package notification

import "context"

// Messenger delivers push messages to device tokens.
// Implemented by the Firebase FCM client in the infrastructure layer.
type Messenger interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
	SendDataOnly(ctx context.Context, tokens []string, data map[string]string) error
}
