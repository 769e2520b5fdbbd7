package notification

import (
	"context"
	"log"

	authdomain "meeting-portal-backend/internal/auth/domain"
	"meeting-portal-backend/pkg/fcm"
)

// PushSender delivers a push notification to device tokens, returning the rejected ones
type PushSender interface {
	SendToDevices(ctx context.Context, tokens []string, p fcm.Push) ([]string, error)
}

// DeviceTokens looks up and prunes a user's registered devices
type DeviceTokens interface {
	GetTokensByUserID(userID string) ([]authdomain.FCMToken, error)
	DeleteToken(token string) error
}

// Forwarder ships events to an external system
type Forwarder interface {
	Forward(ctx context.Context, evt Event) error
}

// Service consumes the event bus: reconnect prompts become push notifications
// and every event is forwarded when a Forwarder is configured.
type Service struct {
	events      <-chan Event
	push        PushSender
	devices     DeviceTokens
	forwarder   Forwarder
	frontendURL string
	done        chan struct{}
}

// NewService subscribes to bus immediately so no event published after this call is missed.
// push and forwarder may be nil.
func NewService(bus *Bus, push PushSender, devices DeviceTokens, forwarder Forwarder, frontendURL string) *Service {
	return &Service{
		events:      bus.Subscribe(),
		push:        push,
		devices:     devices,
		forwarder:   forwarder,
		frontendURL: frontendURL,
		done:        make(chan struct{}),
	}
}

// Run handles events until the bus is closed or ctx is cancelled
func (s *Service) Run(ctx context.Context) {
	defer close(s.done)
	log.Printf("[Notification] Service started (push=%v, forward=%v)", s.push != nil, s.forwarder != nil)

	for {
		select {
		case evt, ok := <-s.events:
			if !ok {
				log.Println("[Notification] Event bus closed, service stopped")
				return
			}
			s.handle(ctx, evt)
		case <-ctx.Done():
			log.Println("[Notification] Service stopped")
			return
		}
	}
}

// Done is closed when Run returns
func (s *Service) Done() <-chan struct{} {
	return s.done
}

func (s *Service) handle(ctx context.Context, evt Event) {
	if evt.Type == EventReconnectRequired {
		s.notifyReconnect(ctx, evt)
	}

	if s.forwarder != nil {
		if err := s.forwarder.Forward(ctx, evt); err != nil {
			log.Printf("[Notification] Failed to forward %s for user %s: %v", evt.Type, evt.UserID, err)
		}
	}
}

func (s *Service) notifyReconnect(ctx context.Context, evt Event) {
	if s.push == nil || s.devices == nil {
		return
	}

	tokens, err := s.devices.GetTokensByUserID(evt.UserID)
	if err != nil {
		log.Printf("[Notification] Error getting FCM tokens for user %s: %v", evt.UserID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	deviceTokens := make([]string, 0, len(tokens))
	for _, t := range tokens {
		deviceTokens = append(deviceTokens, t.Token)
	}

	failed, err := s.push.SendToDevices(ctx, deviceTokens, fcm.Push{
		Title: "Outlook calendar disconnected",
		Body:  "Your Outlook sign-in expired. Reconnect to keep meetings in sync.",
		Link:  s.frontendURL + "/settings/calendar",
		Data: map[string]string{
			"type":    string(EventReconnectRequired),
			"user_id": evt.UserID,
		},
	})
	if err != nil {
		log.Printf("[Notification] Error sending reconnect push to user %s: %v", evt.UserID, err)
		return
	}

	for _, token := range failed {
		if err := s.devices.DeleteToken(token); err != nil {
			log.Printf("[Notification] Failed to delete stale token %s: %v", fcm.MaskToken(token), err)
		}
	}
	log.Printf("[Notification] Reconnect push sent to %d/%d devices of user %s", len(deviceTokens)-len(failed), len(deviceTokens), evt.UserID)
}
