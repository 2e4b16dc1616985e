package websocket

import (
	"context"

	"pollapp/internal/events"
)

// RedisBridge relays poll events received over pub/sub into the hub, so
// every instance pushes events produced by any instance.
type RedisBridge struct {
	subscriber events.Subscriber
	hub        *Hub
}

func NewRedisBridge(subscriber events.Subscriber, hub *Hub) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: hub}
}

func (b *RedisBridge) Run(ctx context.Context) error {
	return b.subscriber.Subscribe(ctx, []string{events.PollChannelPattern}, b.hub.Broadcast)
}
