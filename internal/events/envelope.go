package events

import (
	"encoding/json"
	"time"

	"bazaar-chat/internal/domain/message"

	"github.com/google/uuid"
)

type Envelope struct {
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// MessageCreatedPayload carries the freshly inserted message.
type MessageCreatedPayload struct {
	Message message.Message `json:"message"`
}

// MessageReadPayload carries a read-state change: every unread message
// addressed to ReaderID in the conversation was flagged read.
type MessageReadPayload struct {
	ConversationID string    `json:"conversation_id"`
	ReaderID       uuid.UUID `json:"reader_id"`
}

func NewMessageCreated(m message.Message) (Envelope, error) {
	payload, err := json.Marshal(MessageCreatedPayload{Message: m})
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventType:  EventTypeMessageCreated,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}, nil
}

func NewMessageRead(conversationID string, readerID uuid.UUID) (Envelope, error) {
	payload, err := json.Marshal(MessageReadPayload{ConversationID: conversationID, ReaderID: readerID})
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventType:  EventTypeMessageRead,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}, nil
}
