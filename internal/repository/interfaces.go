package repository

import (
	"context"

	"bazaar-chat/internal/domain/listing"
	"bazaar-chat/internal/domain/message"
	"bazaar-chat/internal/domain/user"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	// ListBetween returns every message exchanged between the two users,
	// ascending by (created_at, id), regardless of stored conversation id.
	ListBetween(ctx context.Context, a, b uuid.UUID) ([]message.Message, error)
	// ListForUser returns every message the user sent or received,
	// descending by (created_at, id).
	ListForUser(ctx context.Context, userID uuid.UUID) ([]message.Message, error)
	// MarkRead flags all unread messages addressed to receiverID in the
	// given conversation. Already-read rows are left alone; zero matches
	// is not an error.
	MarkRead(ctx context.Context, conversationID string, receiverID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	// PairForConversation resolves the participant pair of a stored
	// conversation id from its most recent message. ErrNotFound when no
	// message carries the id.
	PairForConversation(ctx context.Context, conversationID string) (uuid.UUID, uuid.UUID, error)
}

type UserRepository interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error)
}

type ListingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (listing.Listing, error)
}
