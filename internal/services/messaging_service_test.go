package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bazaar-chat/internal/aggregate"
	"bazaar-chat/internal/commands"
	"bazaar-chat/internal/domain/message"
	"bazaar-chat/internal/identity"
	bazaar_errors "bazaar-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessageRepo struct {
	rows      []message.Message
	createErr error
	listErr   error
	creates   int
	markCalls int
}

func (f *fakeMessageRepo) Create(_ context.Context, m *message.Message) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	f.rows = append(f.rows, *m)
	return nil
}

func (f *fakeMessageRepo) ListBetween(_ context.Context, a, b uuid.UUID) ([]message.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []message.Message
	for _, m := range f.rows {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]message.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []message.Message
	for _, m := range f.rows {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, conversationID string, receiverID uuid.UUID) error {
	f.markCalls++
	for i := range f.rows {
		if f.rows[i].ConversationID == conversationID && f.rows[i].ReceiverID == receiverID {
			f.rows[i].Read = true
		}
	}
	return nil
}

func (f *fakeMessageRepo) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, m := range f.rows {
		if m.ReceiverID == userID && !m.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageRepo) PairForConversation(_ context.Context, conversationID string) (uuid.UUID, uuid.UUID, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].ConversationID == conversationID {
			return f.rows[i].SenderID, f.rows[i].ReceiverID, nil
		}
	}
	return uuid.Nil, uuid.Nil, bazaar_errors.ErrNotFound
}

type capturingPublisher struct {
	channels []string
}

func (p *capturingPublisher) Publish(_ context.Context, channel string, _ []byte) error {
	p.channels = append(p.channels, channel)
	return nil
}

type emptyUserResolver struct{}

func (emptyUserResolver) ResolveUsers(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]aggregate.Profile, error) {
	return map[uuid.UUID]aggregate.Profile{}, nil
}

func newService(repo *fakeMessageRepo, pub *capturingPublisher) *MessagingService {
	agg := aggregate.New(emptyUserResolver{}, nil, nil)
	if pub == nil {
		return NewMessagingService(repo, agg, nil, nil)
	}
	return NewMessagingService(repo, agg, pub, nil)
}

func TestSendRejectsSelfMessage(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := newService(repo, nil)
	me := uuid.New()

	_, err := svc.Send(context.Background(), commands.SendMessageCommand{
		SenderID:   me,
		ReceiverID: me,
		Content:    "hi",
	})
	require.ErrorIs(t, err, bazaar_errors.ErrValidation)
	assert.Zero(t, repo.creates, "validation failures must never reach the store")
}

func TestSendRejectsBlankContent(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := newService(repo, nil)

	for _, content := range []string{"", "   ", "\n\t "} {
		_, err := svc.Send(context.Background(), commands.SendMessageCommand{
			SenderID:   uuid.New(),
			ReceiverID: uuid.New(),
			Content:    content,
		})
		require.ErrorIs(t, err, bazaar_errors.ErrValidation, "content %q", content)
	}
	assert.Zero(t, repo.creates)
}

func TestSendDerivesCommutativeIDAndPublishes(t *testing.T) {
	repo := &fakeMessageRepo{}
	pub := &capturingPublisher{}
	svc := newService(repo, pub)
	a, b := uuid.New(), uuid.New()

	msg, err := svc.Send(context.Background(), commands.SendMessageCommand{
		SenderID:   a,
		ReceiverID: b,
		Content:    "  still available?  ",
	})
	require.NoError(t, err)

	assert.Equal(t, identity.ConversationID(b, a, nil), msg.ConversationID)
	assert.Equal(t, "still available?", msg.Content, "content stored trimmed")
	assert.False(t, msg.Read)
	require.Len(t, pub.channels, 2, "event fans out to both participants")
	assert.Contains(t, pub.channels, "channel:user:"+a.String())
	assert.Contains(t, pub.channels, "channel:user:"+b.String())
}

func TestSendUnknownReceiverPassesThroughNotFound(t *testing.T) {
	// the fake stands in for the repository's translation of a foreign
	// key violation; the constraints themselves are covered by the
	// schema tests in internal/domain
	repo := &fakeMessageRepo{createErr: bazaar_errors.ErrNotFound}
	svc := newService(repo, nil)

	_, err := svc.Send(context.Background(), commands.SendMessageCommand{
		SenderID:   uuid.New(),
		ReceiverID: uuid.New(),
		Content:    "hi",
	})
	require.ErrorIs(t, err, bazaar_errors.ErrNotFound)
	assert.False(t, bazaar_errors.IsStore(err))
}

func TestSendWrapsTransportFailure(t *testing.T) {
	repo := &fakeMessageRepo{createErr: errors.New("connection reset")}
	svc := newService(repo, nil)

	_, err := svc.Send(context.Background(), commands.SendMessageCommand{
		SenderID:   uuid.New(),
		ReceiverID: uuid.New(),
		Content:    "hi",
	})
	require.Error(t, err)
	assert.True(t, bazaar_errors.IsStore(err))
}

func TestThreadMessagesUnknownConversationIsEmpty(t *testing.T) {
	svc := newService(&fakeMessageRepo{}, nil)

	msgs, err := svc.ThreadMessages(context.Background(), uuid.New(), "never-seen")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestThreadMessagesDeniesOutsiders(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := newService(repo, nil)
	a, b := uuid.New(), uuid.New()

	msg, err := svc.Send(context.Background(), commands.SendMessageCommand{SenderID: a, ReceiverID: b, Content: "hi"})
	require.NoError(t, err)

	_, err = svc.ThreadMessages(context.Background(), uuid.New(), msg.ConversationID)
	require.ErrorIs(t, err, bazaar_errors.ErrAccessDenied)

	msgs, err := svc.ThreadMessages(context.Background(), b, msg.ConversationID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestMarkReadIdempotent(t *testing.T) {
	repo := &fakeMessageRepo{}
	pub := &capturingPublisher{}
	svc := newService(repo, pub)
	a, b := uuid.New(), uuid.New()

	msg, err := svc.Send(context.Background(), commands.SendMessageCommand{SenderID: a, ReceiverID: b, Content: "hi"})
	require.NoError(t, err)

	cmd := commands.MarkReadCommand{ConversationID: msg.ConversationID, ReaderID: b}
	require.NoError(t, svc.MarkRead(context.Background(), cmd))

	count, err := svc.UnreadCount(context.Background(), b)
	require.NoError(t, err)
	assert.Zero(t, count)

	// second call is a no-op, same observable result
	require.NoError(t, svc.MarkRead(context.Background(), cmd))
	count, err = svc.UnreadCount(context.Background(), b)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkReadUnknownConversationIsNoop(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := newService(repo, nil)

	err := svc.MarkRead(context.Background(), commands.MarkReadCommand{ConversationID: "ghost", ReaderID: uuid.New()})
	require.NoError(t, err)
	assert.Zero(t, repo.markCalls)
}

func TestUnreadCountAcrossConversations(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := newService(repo, nil)
	me, b, c := uuid.New(), uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Send(context.Background(), commands.SendMessageCommand{SenderID: b, ReceiverID: me, Content: "b"})
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := svc.Send(context.Background(), commands.SendMessageCommand{SenderID: c, ReceiverID: me, Content: "c"})
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(context.Background(), me)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)

	bConv := identity.ConversationID(me, b, nil)
	require.NoError(t, svc.MarkRead(context.Background(), commands.MarkReadCommand{ConversationID: bConv, ReaderID: me}))

	count, err = svc.UnreadCount(context.Background(), me)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestConversationsReflectSends(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := newService(repo, nil)
	me, other := uuid.New(), uuid.New()

	clock := time.Now()
	svc.now = func() time.Time { return clock }

	first, err := svc.Send(context.Background(), commands.SendMessageCommand{SenderID: me, ReceiverID: other, Content: "one"})
	require.NoError(t, err)
	clock = clock.Add(time.Second)
	second, err := svc.Send(context.Background(), commands.SendMessageCommand{SenderID: other, ReceiverID: me, Content: "two"})
	require.NoError(t, err)

	conversations, err := svc.Conversations(context.Background(), me)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, second.ID, conversations[0].LastMessage.ID)
	assert.Equal(t, first.ConversationID, conversations[0].ID)
	assert.Equal(t, 1, conversations[0].UnreadCount)
}
