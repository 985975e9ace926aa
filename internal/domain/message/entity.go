package message

import (
	"time"

	"bazaar-chat/internal/domain/listing"
	"bazaar-chat/internal/domain/user"

	"github.com/google/uuid"
)

// Message represents the messages table. Rows are append-only: once
// created, only the Read flag ever changes, and it never reverts to false.
type Message struct {
	ID             uuid.UUID
	ConversationID string
	SenderID       uuid.UUID
	ReceiverID     uuid.UUID
	ListingID      uuid.NullUUID
	Content        string
	Read           bool
	CreatedAt      time.Time

	// Belongs-to declarations so AutoMigrate emits the foreign keys;
	// inserting against a missing sender, receiver or listing must fail
	// at the store so it can surface as not-found.
	Sender   user.User        `gorm:"foreignKey:SenderID;references:ID" json:"-"`
	Receiver user.User        `gorm:"foreignKey:ReceiverID;references:ID" json:"-"`
	Listing  *listing.Listing `gorm:"foreignKey:ListingID;references:ID" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}

// MoreRecent reports whether m is newer than other. Equal timestamps are
// broken by the lexicographically greater id so the ordering is total and
// deterministic.
func (m Message) MoreRecent(other Message) bool {
	if m.CreatedAt.Equal(other.CreatedAt) {
		return m.ID.String() > other.ID.String()
	}
	return m.CreatedAt.After(other.CreatedAt)
}
