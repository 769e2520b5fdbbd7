package fcm

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

const defaultIcon = "/icon-192.svg"

// Client sends web push notifications through Firebase Cloud Messaging
type Client struct {
	messaging *messaging.Client
	icon      string
}

// NewClient creates an FCM client. An empty credentialsFile uses application default credentials.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	mc, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Println("[FCM] Client initialized")
	return &Client{messaging: mc, icon: defaultIcon}, nil
}

// Push is one notification addressed to all of a user's devices
type Push struct {
	Title string
	Body  string
	// Link is opened when the notification is clicked
	Link string
	Data map[string]string
}

func (c *Client) webpush(p Push) *messaging.WebpushConfig {
	cfg := &messaging.WebpushConfig{
		Notification: &messaging.WebpushNotification{
			Title: p.Title,
			Body:  p.Body,
			Icon:  c.icon,
		},
	}
	if p.Link != "" {
		cfg.FCMOptions = &messaging.WebpushFCMOptions{Link: p.Link}
	}
	return cfg
}

// SendToDevices delivers p to every token and returns the tokens FCM rejected
func (c *Client) SendToDevices(ctx context.Context, tokens []string, p Push) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data:    p.Data,
		Webpush: c.webpush(p),
	}

	resp, err := c.messaging.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	log.Printf("[FCM] Multicast sent: %d success, %d failures", resp.SuccessCount, resp.FailureCount)

	var failed []string
	for i, r := range resp.Responses {
		if r.Success {
			continue
		}
		failed = append(failed, tokens[i])
		log.Printf("[FCM] Failed to send to token %s: %v", MaskToken(tokens[i]), r.Error)
	}
	return failed, nil
}

// MaskToken shortens a device token for log output
func MaskToken(token string) string {
	if len(token) <= 12 {
		return "***"
	}
	return token[:12] + "..."
}
