// Package notify is the realtime change feed consumed by sessions. The
// contract is advisory: delivery is at-least-once with no ordering
// guarantee relative to store writes, so consumers treat events as
// triggers to re-fetch and de-duplicate merges by message id.
package notify

import (
	"context"

	"bazaar-chat/internal/events"

	"github.com/google/uuid"
)

// Handler receives every event published for the subscribed user.
type Handler func(envelope events.Envelope)

type Subscription interface {
	Unsubscribe()
}

type Notifier interface {
	Subscribe(ctx context.Context, userID uuid.UUID, handler Handler) (Subscription, error)
}
