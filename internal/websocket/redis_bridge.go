package websocket

import (
	"context"
	"strings"

	"bazaar-chat/internal/events"
	"bazaar-chat/internal/redis"

	"github.com/google/uuid"
)

// RedisBridge relays user-channel publications from redis into the hub
// so every API instance pushes events to the connections it holds.
type RedisBridge struct {
	subscriber *redis.Subscriber
	hub        *Hub
}

func NewRedisBridge(subscriber *redis.Subscriber, hub *Hub) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: hub}
}

func (b *RedisBridge) Run(ctx context.Context) error {
	pattern := events.ChannelPrefixUser + "*"
	return b.subscriber.Subscribe(ctx, []string{pattern}, func(channel string, payload []byte) {
		userID, err := uuid.Parse(strings.TrimPrefix(channel, events.ChannelPrefixUser))
		if err != nil {
			return
		}
		b.hub.BroadcastToUser(userID, payload)
	})
}
