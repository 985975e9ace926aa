package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User represents the users table. Accounts are provisioned by the auth
// provider; this service only mirrors the display fields it needs.
type User struct {
	ID          uuid.UUID
	DisplayName string
	AvatarURL   sql.NullString
	CreatedAt   time.Time
}

func (User) TableName() string {
	return "users"
}
