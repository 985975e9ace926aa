package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bazaar-chat/internal/aggregate"
	"bazaar-chat/internal/commands"
	"bazaar-chat/internal/domain/message"
	"bazaar-chat/internal/events"
	"bazaar-chat/internal/identity"
	"bazaar-chat/internal/repository"
	bazaar_errors "bazaar-chat/pkg/errors"
	"bazaar-chat/pkg/logger"

	"github.com/google/uuid"
)

// MessagingService is the store adapter of the messaging core: it owns
// validation, persistence, derived reads and event publication. Failures
// of the backing store surface as StoreError; validation and access
// failures are raised before any write.
type MessagingService struct {
	messages   repository.MessageRepository
	aggregator *aggregate.Aggregator
	publisher  events.Publisher
	log        *logger.Logger
	now        func() time.Time
}

func NewMessagingService(messages repository.MessageRepository, aggregator *aggregate.Aggregator, publisher events.Publisher, log *logger.Logger) *MessagingService {
	return &MessagingService{
		messages:   messages,
		aggregator: aggregator,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

// Send validates and appends one message. The conversation id is always
// derived commutatively at write time; historical non-commutative ids
// remain in the table and are tolerated on the read side.
func (s *MessagingService) Send(ctx context.Context, cmd commands.SendMessageCommand) (message.Message, error) {
	if err := cmd.Validate(); err != nil {
		return message.Message{}, err
	}

	msg := message.Message{
		ID:             uuid.New(),
		ConversationID: identity.ConversationID(cmd.SenderID, cmd.ReceiverID, cmd.ListingID),
		SenderID:       cmd.SenderID,
		ReceiverID:     cmd.ReceiverID,
		Content:        cmd.TrimmedContent(),
		CreatedAt:      s.now().UTC(),
	}
	if cmd.ListingID != nil {
		msg.ListingID = uuid.NullUUID{UUID: *cmd.ListingID, Valid: true}
	}

	if err := s.messages.Create(ctx, &msg); err != nil {
		if errors.Is(err, bazaar_errors.ErrNotFound) {
			return message.Message{}, err
		}
		return message.Message{}, bazaar_errors.Store("insert message", err)
	}

	if envelope, err := events.NewMessageCreated(msg); err == nil {
		s.publish(ctx, envelope, msg.SenderID, msg.ReceiverID)
	}
	return msg, nil
}

// Conversations returns the derived conversation list for a user, most
// recent first.
func (s *MessagingService) Conversations(ctx context.Context, userID uuid.UUID) ([]aggregate.Conversation, error) {
	msgs, err := s.messages.ListForUser(ctx, userID)
	if err != nil {
		return nil, bazaar_errors.Store("list messages", err)
	}
	return s.aggregator.Aggregate(ctx, msgs, userID)
}

// ThreadMessages resolves a stored conversation id to its participant pair
// and returns the pair's full history ascending. An id with no stored
// messages is a brand-new thread and yields an empty list, not an error.
// A caller outside the pair gets ErrAccessDenied, never partial data.
func (s *MessagingService) ThreadMessages(ctx context.Context, userID uuid.UUID, conversationID string) ([]message.Message, error) {
	a, b, err := s.messages.PairForConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, bazaar_errors.ErrNotFound) {
			return []message.Message{}, nil
		}
		return nil, bazaar_errors.Store("resolve conversation", err)
	}
	if userID != a && userID != b {
		return nil, bazaar_errors.ErrAccessDenied
	}
	return s.MessagesBetween(ctx, a, b)
}

// MessagesBetween returns the full history between two users ascending,
// across every historical conversation id.
func (s *MessagingService) MessagesBetween(ctx context.Context, a, b uuid.UUID) ([]message.Message, error) {
	msgs, err := s.messages.ListBetween(ctx, a, b)
	if err != nil {
		return nil, bazaar_errors.Store("list thread", err)
	}
	return msgs, nil
}

// MarkRead flags every unread message addressed to the reader in the
// conversation. Idempotent: re-marking an already-read thread is a no-op.
func (s *MessagingService) MarkRead(ctx context.Context, cmd commands.MarkReadCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	a, b, err := s.messages.PairForConversation(ctx, cmd.ConversationID)
	if err != nil {
		if errors.Is(err, bazaar_errors.ErrNotFound) {
			// nothing stored under this id yet, nothing to mark
			return nil
		}
		return bazaar_errors.Store("resolve conversation", err)
	}
	if cmd.ReaderID != a && cmd.ReaderID != b {
		return bazaar_errors.ErrAccessDenied
	}

	if err := s.messages.MarkRead(ctx, cmd.ConversationID, cmd.ReaderID); err != nil {
		return bazaar_errors.Store("mark read", err)
	}

	if envelope, err := events.NewMessageRead(cmd.ConversationID, cmd.ReaderID); err == nil {
		s.publish(ctx, envelope, a, b)
	}
	return nil
}

// UnreadCount returns the user's total unread messages across all threads.
func (s *MessagingService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.messages.CountUnread(ctx, userID)
	if err != nil {
		return 0, bazaar_errors.Store("count unread", err)
	}
	return count, nil
}

// publish fans an envelope out to each participant's channel. Events are
// advisory; a publish failure is logged and never fails the write that
// produced it.
func (s *MessagingService) publish(ctx context.Context, envelope events.Envelope, userIDs ...uuid.UUID) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return
	}
	for _, userID := range userIDs {
		if err := s.publisher.Publish(ctx, events.UserChannel(userID.String()), payload); err != nil && s.log != nil {
			s.log.Warnf("publish %s to user %s failed: %v", envelope.EventType, userID, err)
		}
	}
}
