package aggregate

import (
	"context"
	"testing"
	"time"

	"bazaar-chat/internal/domain/message"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserResolver struct {
	profiles map[uuid.UUID]Profile
	calls    int
}

func (s *stubUserResolver) ResolveUsers(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]Profile, error) {
	s.calls++
	out := make(map[uuid.UUID]Profile)
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type stubListingResolver struct {
	previews map[uuid.UUID]*ListingPreview
}

func (s *stubListingResolver) ResolveListing(_ context.Context, id uuid.UUID) (*ListingPreview, error) {
	return s.previews[id], nil
}

func msg(sender, receiver uuid.UUID, convID string, at time.Time, read bool) message.Message {
	return message.Message{
		ID:             uuid.New(),
		ConversationID: convID,
		SenderID:       sender,
		ReceiverID:     receiver,
		Content:        "hello",
		Read:           read,
		CreatedAt:      at,
	}
}

func TestAggregateGroupsAcrossConversationIDDrift(t *testing.T) {
	me, them := uuid.New(), uuid.New()
	base := time.Now().Add(-time.Hour)

	// Same pair, two historical conversation ids.
	older := msg(them, me, "legacy-key", base, false)
	newer := msg(them, me, "modern-key", base.Add(time.Minute), false)

	agg := New(&stubUserResolver{profiles: map[uuid.UUID]Profile{}}, nil, nil)
	conversations, err := agg.Aggregate(context.Background(), []message.Message{older, newer}, me)
	require.NoError(t, err)

	require.Len(t, conversations, 1, "one pair must yield one conversation")
	conv := conversations[0]
	assert.Equal(t, "modern-key", conv.ID, "id comes from the most recent message")
	assert.Equal(t, newer.ID, conv.LastMessage.ID)
	assert.Equal(t, 2, conv.UnreadCount, "unread summed across both conversation ids")
	assert.Equal(t, newer.CreatedAt, conv.UpdatedAt)
}

func TestAggregateUnreadCountsOnlyCurrentReceiver(t *testing.T) {
	me, them := uuid.New(), uuid.New()
	base := time.Now()

	msgs := []message.Message{
		msg(them, me, "c", base, false),           // unread for me
		msg(them, me, "c", base.Add(time.Second), true), // already read
		msg(me, them, "c", base.Add(2*time.Second), false), // unread for them, not me
	}

	agg := New(&stubUserResolver{profiles: map[uuid.UUID]Profile{}}, nil, nil)
	conversations, err := agg.Aggregate(context.Background(), msgs, me)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, 1, conversations[0].UnreadCount)
}

func TestAggregateSortsMostRecentFirst(t *testing.T) {
	me, alice, bob, carol := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	base := time.Now()

	msgs := []message.Message{
		msg(alice, me, "a", base.Add(-2*time.Hour), false),
		msg(bob, me, "b", base.Add(-time.Minute), false),
		msg(carol, me, "c", base.Add(-time.Hour), false),
	}

	agg := New(&stubUserResolver{profiles: map[uuid.UUID]Profile{}}, nil, nil)
	conversations, err := agg.Aggregate(context.Background(), msgs, me)
	require.NoError(t, err)
	require.Len(t, conversations, 3)
	assert.Equal(t, "b", conversations[0].ID)
	assert.Equal(t, "c", conversations[1].ID)
	assert.Equal(t, "a", conversations[2].ID)
}

func TestAggregateTieBreaksByGreaterID(t *testing.T) {
	me, them := uuid.New(), uuid.New()
	at := time.Now()

	first := msg(them, me, "c", at, false)
	second := msg(them, me, "c", at, false)
	want := first
	if second.ID.String() > first.ID.String() {
		want = second
	}

	agg := New(&stubUserResolver{profiles: map[uuid.UUID]Profile{}}, nil, nil)
	conversations, err := agg.Aggregate(context.Background(), []message.Message{first, second}, me)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, want.ID, conversations[0].LastMessage.ID)
}

func TestAggregateResolvesParticipantsWithSentinel(t *testing.T) {
	me, known, ghost := uuid.New(), uuid.New(), uuid.New()
	base := time.Now()

	resolver := &stubUserResolver{profiles: map[uuid.UUID]Profile{
		me:    {ID: me, Name: "Me"},
		known: {ID: known, Name: "Alice", AvatarURL: "https://cdn/avatar.png"},
	}}
	msgs := []message.Message{
		msg(known, me, "a", base, false),
		msg(ghost, me, "b", base.Add(time.Second), false),
	}

	agg := New(resolver, nil, nil)
	conversations, err := agg.Aggregate(context.Background(), msgs, me)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	assert.Equal(t, 1, resolver.calls, "participants resolved in a single batch")

	// conversations[0] is the ghost thread (more recent)
	assert.Equal(t, "Unknown User", conversations[0].Participants[1].Name)
	assert.Equal(t, ghost, conversations[0].Participants[1].ID)
	assert.Equal(t, "Alice", conversations[1].Participants[1].Name)
}

func TestAggregateListingFromMostRecentListingBearingMessage(t *testing.T) {
	me, them := uuid.New(), uuid.New()
	oldListing, newListing := uuid.New(), uuid.New()
	base := time.Now()

	withListing := func(m message.Message, id uuid.UUID) message.Message {
		m.ListingID = uuid.NullUUID{UUID: id, Valid: true}
		return m
	}
	msgs := []message.Message{
		withListing(msg(them, me, "c", base, false), oldListing),
		withListing(msg(me, them, "c", base.Add(time.Minute), false), newListing),
		msg(them, me, "c", base.Add(2*time.Minute), false), // no listing, most recent overall
	}

	listings := &stubListingResolver{previews: map[uuid.UUID]*ListingPreview{
		newListing: {ID: newListing, Title: "Road bike", PriceCents: 12500},
	}}
	agg := New(&stubUserResolver{profiles: map[uuid.UUID]Profile{}}, listings, nil)
	conversations, err := agg.Aggregate(context.Background(), msgs, me)
	require.NoError(t, err)
	require.Len(t, conversations, 1)

	require.NotNil(t, conversations[0].Listing)
	assert.Equal(t, "Road bike", conversations[0].Listing.Title)
}

func TestAggregateEmptyInput(t *testing.T) {
	agg := New(&stubUserResolver{profiles: map[uuid.UUID]Profile{}}, nil, nil)
	conversations, err := agg.Aggregate(context.Background(), nil, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, conversations)
}
