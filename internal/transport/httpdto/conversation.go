package httpdto

import (
	"time"

	"bazaar-chat/internal/aggregate"
)

type ConversationResponse struct {
	ID           string                    `json:"id"`
	Participants []aggregate.Profile       `json:"participants"`
	LastMessage  MessageResponse           `json:"last_message"`
	UnreadCount  int                       `json:"unread_count"`
	Listing      *aggregate.ListingPreview `json:"listing,omitempty"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

func NewConversationResponse(c aggregate.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:           c.ID,
		Participants: c.Participants,
		LastMessage:  NewMessageResponse(c.LastMessage),
		UnreadCount:  c.UnreadCount,
		Listing:      c.Listing,
		UpdatedAt:    c.UpdatedAt,
	}
}

func NewConversationListResponse(conversations []aggregate.Conversation) []ConversationResponse {
	out := make([]ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		out = append(out, NewConversationResponse(c))
	}
	return out
}
