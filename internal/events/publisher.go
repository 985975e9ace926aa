package events

import "context"

// Publisher pushes raw event payloads onto a named channel. Delivery is
// at-least-once and unordered relative to store writes; consumers
// de-duplicate by message id.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}
