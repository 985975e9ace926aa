package notify

import (
	"context"
	"encoding/json"

	"bazaar-chat/internal/events"
	"bazaar-chat/pkg/logger"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// RedisNotifier delivers the per-user pub/sub channel to a handler.
type RedisNotifier struct {
	client *goredis.Client
	log    *logger.Logger
}

func NewRedisNotifier(client *goredis.Client, log *logger.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, log: log}
}

type redisSubscription struct {
	cancel context.CancelFunc
	pubsub *goredis.PubSub
}

func (s *redisSubscription) Unsubscribe() {
	s.cancel()
	_ = s.pubsub.Close()
}

func (n *RedisNotifier) Subscribe(ctx context.Context, userID uuid.UUID, handler Handler) (Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	pubsub := n.client.Subscribe(subCtx, events.UserChannel(userID.String()))

	// force the subscription onto the wire before returning
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, err
	}

	go func() {
		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var envelope events.Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
					if n.log != nil {
						n.log.Warnf("dropping malformed event on %s: %v", msg.Channel, err)
					}
					continue
				}
				handler(envelope)
			}
		}
	}()

	return &redisSubscription{cancel: cancel, pubsub: pubsub}, nil
}
