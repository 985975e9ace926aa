// Package identity derives stable conversation keys from participant
// pairs. The key is commutative in the pair and distinguishes
// listing-scoped threads from the general thread between the same users.
package identity

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// generalScope marks the thread between two users that is not tied to any
// listing. It must never collide with a listing id, which is always a UUID.
const generalScope = "general"

// ConversationID returns the conversation key for the pair (a, b) and an
// optional listing scope. The pair is canonicalized by sorting, so argument
// order never matters.
func ConversationID(a, b uuid.UUID, listingID *uuid.UUID) string {
	first, second := a.String(), b.String()
	if second < first {
		first, second = second, first
	}
	scope := generalScope
	if listingID != nil {
		scope = listingID.String()
	}
	sum := sha256.Sum256([]byte(first + ":" + second + ":" + scope))
	return hex.EncodeToString(sum[:])
}

// PairKey returns the canonical grouping key for a participant pair,
// independent of any listing scope or historical conversation id. The
// aggregation layer groups by this, not by stored conversation ids.
func PairKey(a, b uuid.UUID) string {
	first, second := a.String(), b.String()
	if second < first {
		first, second = second, first
	}
	return first + ":" + second
}
