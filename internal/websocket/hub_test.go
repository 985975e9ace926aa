package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Send:   make(chan []byte, 8),
	}
}

func TestBroadcastReachesEveryConnectionOfUser(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	userID := uuid.New()
	first := newTestClient(userID)
	second := newTestClient(userID)
	other := newTestClient(uuid.New())

	hub.Register(first)
	hub.Register(second)
	hub.Register(other)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 3
	}, time.Second, 5*time.Millisecond)

	hub.BroadcastToUser(userID, []byte(`{"event_type":"message.created"}`))

	for _, c := range []*Client{first, second} {
		select {
		case payload := <-c.Send:
			assert.JSONEq(t, `{"event_type":"message.created"}`, string(payload))
		default:
			t.Fatalf("client %s received nothing", c.ID)
		}
	}
	assert.Empty(t, other.Send)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	userID := uuid.New()
	client := newTestClient(userID)
	hub.Register(client)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	hub.Unregister(client)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)

	// channel is closed on removal and nothing new arrives
	hub.BroadcastToUser(userID, []byte("late"))
	_, open := <-client.Send
	assert.False(t, open)
}

func TestSlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	client := &Client{
		ID:     uuid.New().String(),
		UserID: uuid.New(),
		Send:   make(chan []byte, 1),
	}

	client.SendMessage([]byte("first"))
	done := make(chan struct{})
	go func() {
		client.SendMessage([]byte("second"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendMessage blocked on a full buffer")
	}
	assert.Equal(t, "first", string(<-client.Send))
}
