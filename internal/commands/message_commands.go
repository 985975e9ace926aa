package commands

import (
	"strings"

	bazaar_errors "bazaar-chat/pkg/errors"

	"github.com/google/uuid"
)

// SendMessageCommand appends one message to a pair's thread.
type SendMessageCommand struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Content    string
	ListingID  *uuid.UUID
}

func (c SendMessageCommand) Validate() error {
	if nilUUID(c.SenderID) || nilUUID(c.ReceiverID) {
		return bazaar_errors.Validation("sender and receiver are required")
	}
	if c.SenderID == c.ReceiverID {
		return bazaar_errors.Validation("cannot message yourself")
	}
	if strings.TrimSpace(c.Content) == "" {
		return bazaar_errors.Validation("content is empty")
	}
	return nil
}

// TrimmedContent returns the content as it will be stored.
func (c SendMessageCommand) TrimmedContent() string {
	return strings.TrimSpace(c.Content)
}

// MarkReadCommand flags a conversation's messages read for the reader.
type MarkReadCommand struct {
	ConversationID string
	ReaderID       uuid.UUID
}

func (c MarkReadCommand) Validate() error {
	if c.ConversationID == "" {
		return bazaar_errors.Validation("conversation id is required")
	}
	if nilUUID(c.ReaderID) {
		return bazaar_errors.Validation("reader is required")
	}
	return nil
}
