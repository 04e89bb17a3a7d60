package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

const fcmBatchLimit = 500

// TokenDeactivator marks an invalid FCM token as inactive.
type TokenDeactivator func(ctx context.Context, token string) error

// batchSender is the subset of *messaging.Client the Client uses.
type batchSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Client implements notification.Messenger using Firebase Cloud Messaging
type Client struct {
	sender      batchSender
	deactivator TokenDeactivator
	log         zerolog.Logger
}

// NewClient initializes a Firebase app from a service-account file.
// deactivator is called for unregistered tokens; may be nil.
func NewClient(ctx context.Context, credentialsFile string, deactivator TokenDeactivator, log zerolog.Logger) (*Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}

	return newClient(msgClient, deactivator, log), nil
}

func newClient(sender batchSender, deactivator TokenDeactivator, log zerolog.Logger) *Client {
	return &Client{
		sender:      sender,
		deactivator: deactivator,
		log:         log.With().Str("component", "fcm").Logger(),
	}
}

// SendMulticast sends a visible notification with data to every token.
func (c *Client) SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	return c.sendEach(ctx, "notification", tokens, func(batch []string) *messaging.MulticastMessage {
		return &messaging.MulticastMessage{
			Tokens:       batch,
			Notification: &messaging.Notification{Title: title, Body: body},
			Data:         data,
			Android: &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					ChannelID: "transaction_channel",
					Tag:       data["notificationId"],
				},
			},
		}
	})
}

// SendDataOnly sends a silent data message; clients act on it without
// showing anything.
func (c *Client) SendDataOnly(ctx context.Context, tokens []string, data map[string]string) error {
	return c.sendEach(ctx, "data", tokens, func(batch []string) *messaging.MulticastMessage {
		return &messaging.MulticastMessage{
			Tokens:  batch,
			Data:    data,
			Android: &messaging.AndroidConfig{Priority: "high"},
		}
	})
}

// sendEach batches tokens into chunks of 500, the FCM multicast limit.
func (c *Client) sendEach(ctx context.Context, kind string, tokens []string, build func(batch []string) *messaging.MulticastMessage) error {
	if len(tokens) == 0 {
		return nil
	}

	var success, failure int
	for _, batch := range chunkTokens(tokens, fcmBatchLimit) {
		resp, err := c.sender.SendEachForMulticast(ctx, build(batch))
		if err != nil {
			return fmt.Errorf("failed to send FCM %s multicast: %w", kind, err)
		}

		success += resp.SuccessCount
		failure += resp.FailureCount
		if resp.FailureCount > 0 {
			c.handleFailures(ctx, batch, resp)
		}
	}

	c.log.Debug().Str("kind", kind).Int("success", success).Int("failure", failure).Msg("FCM multicast sent")
	if success == 0 && failure > 0 {
		return fmt.Errorf("FCM %s multicast: all %d deliveries failed", kind, failure)
	}
	return nil
}

func (c *Client) handleFailures(ctx context.Context, tokens []string, resp *messaging.BatchResponse) {
	for i, r := range resp.Responses {
		if r.Error == nil || i >= len(tokens) {
			continue
		}
		if messaging.IsUnregistered(r.Error) || messaging.IsInvalidArgument(r.Error) {
			c.log.Info().Err(r.Error).Int("index", i).Msg("Deactivating invalid FCM token")
			c.deactivate(ctx, tokens[i])
			continue
		}
		c.log.Warn().Err(r.Error).Int("index", i).Msg("FCM send error")
	}
}

func (c *Client) deactivate(ctx context.Context, token string) {
	if c.deactivator == nil {
		return
	}
	if err := c.deactivator(ctx, token); err != nil {
		c.log.Warn().Err(err).Msg("Failed to deactivate FCM token")
	}
}

func chunkTokens(tokens []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(tokens); start += size {
		end := min(start+size, len(tokens))
		chunks = append(chunks, tokens[start:end])
	}
	return chunks
}
