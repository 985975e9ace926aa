package listing

import (
	"time"

	"bazaar-chat/internal/domain/user"

	"github.com/google/uuid"
)

// Listing represents the listings table: the marketplace item a
// conversation may be scoped to. Listing CRUD lives in the marketplace
// service; this mirror carries the preview fields only.
type Listing struct {
	ID         uuid.UUID
	SellerID   uuid.UUID
	Title      string
	PriceCents int64
	ImageURLs  string // JSON-encoded array of CDN URLs
	CreatedAt  time.Time

	Seller user.User `gorm:"foreignKey:SellerID;references:ID" json:"-"`
}

func (Listing) TableName() string {
	return "listings"
}
