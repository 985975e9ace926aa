// Package aggregate derives the per-user conversation view from raw
// message rows. Grouping is by canonical participant pair, never by the
// stored conversation id: historical id-derivation drift left multiple
// conversation ids for some pairs, and those must collapse into one thread.
package aggregate

import (
	"context"
	"sort"
	"time"

	"bazaar-chat/internal/domain/message"
	"bazaar-chat/internal/identity"
	"bazaar-chat/pkg/logger"

	"github.com/google/uuid"
)

// Profile is a resolved participant identity.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

// ListingPreview is the listing context attached to a thread.
type ListingPreview struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	ImageURLs  []string  `json:"image_urls"`
	PriceCents int64     `json:"price_cents"`
}

// Conversation is the derived view of one participant pair's thread. It is
// recomputed on every read and never stored.
type Conversation struct {
	// ID is the conversation id of the most recent message in the pair, so
	// the UI still has a concrete key to open and mark read.
	ID           string          `json:"id"`
	Participants []Profile       `json:"participants"`
	LastMessage  message.Message `json:"last_message"`
	UnreadCount  int             `json:"unread_count"`
	Listing      *ListingPreview `json:"listing,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// UserResolver batch-resolves display profiles. Missing ids must not fail
// the batch; they are absent from the result map.
type UserResolver interface {
	ResolveUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Profile, error)
}

// ListingResolver resolves a listing preview, (nil, nil) when the listing
// no longer exists.
type ListingResolver interface {
	ResolveListing(ctx context.Context, id uuid.UUID) (*ListingPreview, error)
}

// UnknownProfile is the sentinel used for participants the resolver cannot
// find (deleted accounts, partial replication).
func UnknownProfile(id uuid.UUID) Profile {
	return Profile{ID: id, Name: "Unknown User"}
}

type group struct {
	last        message.Message
	unread      int
	convIDs     map[string]struct{}
	lastListing uuid.NullUUID // listing of the most recent listing-bearing message
	lastListMsg message.Message
	otherID     uuid.UUID
}

// Aggregator turns a user's raw message rows into their conversation list.
type Aggregator struct {
	users    UserResolver
	listings ListingResolver
	log      *logger.Logger
}

func New(users UserResolver, listings ListingResolver, log *logger.Logger) *Aggregator {
	return &Aggregator{users: users, listings: listings, log: log}
}

// Aggregate groups msgs by participant pair and computes last message,
// unread count, participants and listing context for currentUser. The
// result is sorted most recent first.
func (a *Aggregator) Aggregate(ctx context.Context, msgs []message.Message, currentUser uuid.UUID) ([]Conversation, error) {
	groups := make(map[string]*group)
	for _, m := range msgs {
		key := identity.PairKey(m.SenderID, m.ReceiverID)
		g, ok := groups[key]
		if !ok {
			g = &group{last: m, convIDs: make(map[string]struct{})}
			g.otherID = otherParticipant(m, currentUser)
			groups[key] = g
		} else if m.MoreRecent(g.last) {
			g.last = m
		}
		g.convIDs[m.ConversationID] = struct{}{}
		if m.ReceiverID == currentUser && !m.Read {
			g.unread++
		}
		if m.ListingID.Valid && (!g.lastListing.Valid || m.MoreRecent(g.lastListMsg)) {
			g.lastListing = m.ListingID
			g.lastListMsg = m
		}
	}

	profiles, err := a.resolveParticipants(ctx, groups, currentUser)
	if err != nil {
		return nil, err
	}

	conversations := make([]Conversation, 0, len(groups))
	for key, g := range groups {
		if len(g.convIDs) > 1 && a.log != nil {
			a.log.Warnf("conversation id drift for pair %s: %d distinct ids", key, len(g.convIDs))
		}

		conv := Conversation{
			ID:           g.last.ConversationID,
			Participants: pairProfiles(profiles, currentUser, g.otherID),
			LastMessage:  g.last,
			UnreadCount:  g.unread,
			UpdatedAt:    g.last.CreatedAt,
		}
		if g.lastListing.Valid && a.listings != nil {
			preview, err := a.listings.ResolveListing(ctx, g.lastListing.UUID)
			if err != nil {
				// a missing or unreachable listing never sinks the list
				if a.log != nil {
					a.log.Warnf("listing %s resolution failed: %v", g.lastListing.UUID, err)
				}
			} else {
				conv.Listing = preview
			}
		}
		conversations = append(conversations, conv)
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.MoreRecent(conversations[j].LastMessage)
	})
	return conversations, nil
}

func (a *Aggregator) resolveParticipants(ctx context.Context, groups map[string]*group, currentUser uuid.UUID) (map[uuid.UUID]Profile, error) {
	ids := make([]uuid.UUID, 0, len(groups)+1)
	seen := map[uuid.UUID]struct{}{currentUser: {}}
	ids = append(ids, currentUser)
	for _, g := range groups {
		if _, ok := seen[g.otherID]; !ok {
			seen[g.otherID] = struct{}{}
			ids = append(ids, g.otherID)
		}
	}

	profiles, err := a.users.ResolveUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := profiles[id]; !ok {
			profiles[id] = UnknownProfile(id)
		}
	}
	return profiles, nil
}

func otherParticipant(m message.Message, currentUser uuid.UUID) uuid.UUID {
	if m.SenderID == currentUser {
		return m.ReceiverID
	}
	return m.SenderID
}

func pairProfiles(profiles map[uuid.UUID]Profile, currentUser, other uuid.UUID) []Profile {
	return []Profile{profiles[currentUser], profiles[other]}
}
