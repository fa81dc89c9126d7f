package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher delivers envelopes to whoever listens on the room channel.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// Transport is the raw pub/sub primitive a Publisher writes to.
type Transport interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type ChannelPublisher struct {
	transport Transport
}

func NewChannelPublisher(transport Transport) *ChannelPublisher {
	return &ChannelPublisher{transport: transport}
}

func (p *ChannelPublisher) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.transport.Publish(ctx, RoomChannel(env.RoomID), data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", env.EventType, err)
	}
	return nil
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) error {
	return nil
}
