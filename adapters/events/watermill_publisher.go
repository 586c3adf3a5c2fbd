// Package events publishes identity lifecycle events so other
// instances and downstream consumers can react to registrations.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/hyprmtrx/hvm/core"
	"github.com/hyprmtrx/hvm/ports"
)

const (
	// TopicRegistered carries new-identity events
	TopicRegistered = "hvm.identity.registered"

	// TopicAuthenticated carries sign-in events for existing identities
	TopicAuthenticated = "hvm.identity.authenticated"
)

// RegisteredEvent is published when a new identity is created
type RegisteredEvent struct {
	Handle         string                `json:"handle"`
	Game           string                `json:"game"`
	AuthWallets    map[core.Chain]string `json:"auth_wallets"`
	CustodyWallets []core.CustodyWallet  `json:"custody_wallets"`
	CreatedAt      time.Time             `json:"created_at"`
}

// AuthenticatedEvent is published on every successful sign-in
type AuthenticatedEvent struct {
	Handle string    `json:"handle"`
	Game   string    `json:"game"`
	At     time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishRegistered publishes a new-identity event
func (p *WatermillPublisher) PublishRegistered(ctx context.Context, identity *core.Identity, game string) error {
	event := RegisteredEvent{
		Handle:         identity.Handle,
		Game:           game,
		AuthWallets:    identity.AuthWallets,
		CustodyWallets: identity.CustodyWallets,
		CreatedAt:      identity.CreatedAt,
	}
	return p.publish(TopicRegistered, event)
}

// PublishAuthenticated publishes a sign-in event
func (p *WatermillPublisher) PublishAuthenticated(ctx context.Context, handle, game string) error {
	event := AuthenticatedEvent{Handle: handle, Game: game, At: time.Now()}
	return p.publish(TopicAuthenticated, event)
}

func (p *WatermillPublisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
