package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/layer-3/warden/core"
	"github.com/layer-3/warden/ports"
)

// DefaultTopic is the topic login events are published to
const DefaultTopic = "warden.login"

// LoginEvent is the wire form of core.LoginEvent
type LoginEvent struct {
	ClientID     string     `json:"client_id"`
	Subject      string     `json:"subject,omitempty"`
	Organization string     `json:"organization,omitempty"`
	Outcome      string     `json:"outcome"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	At           time.Time  `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher. An empty topic selects DefaultTopic.
func NewWatermillPublisher(publisher message.Publisher, topic string) ports.EventPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &WatermillPublisher{
		publisher: publisher,
		topic:     topic,
	}
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, event core.LoginEvent) error {
	wire := LoginEvent{
		ClientID:     event.ClientID,
		Subject:      event.Subject,
		Organization: event.Organization,
		Outcome:      string(event.Outcome),
		At:           event.At.UTC(),
	}
	if !event.ExpiresAt.IsZero() {
		exp := event.ExpiresAt.UTC()
		wire.ExpiresAt = &exp
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// NopPublisher drops every event
type NopPublisher struct{}

// PublishLogin implements ports.EventPublisher
func (NopPublisher) PublishLogin(context.Context, core.LoginEvent) error {
	return nil
}
