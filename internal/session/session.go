// Package session owns the in-process messaging view for one user: the
// conversation list, the currently open thread and its buffer, and the
// send/load lifecycle. All mutations go through Session methods; the UI
// and the notifier callback never touch the state directly.
package session

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"bazaar-chat/internal/aggregate"
	"bazaar-chat/internal/commands"
	"bazaar-chat/internal/domain/message"
	"bazaar-chat/internal/events"
	"bazaar-chat/internal/identity"
	"bazaar-chat/internal/notify"
	bazaar_errors "bazaar-chat/pkg/errors"
	"bazaar-chat/pkg/logger"

	"github.com/google/uuid"
)

type State int

const (
	StateIdle State = iota
	StateLoadingConversations
	StateReady
	StateOpeningConversation
	StateConversationOpen
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingConversations:
		return "loading_conversations"
	case StateReady:
		return "ready"
	case StateOpeningConversation:
		return "opening_conversation"
	case StateConversationOpen:
		return "conversation_open"
	}
	return "unknown"
}

// Store is the slice of the messaging service a session drives.
type Store interface {
	Conversations(ctx context.Context, userID uuid.UUID) ([]aggregate.Conversation, error)
	ThreadMessages(ctx context.Context, userID uuid.UUID, conversationID string) ([]message.Message, error)
	MessagesBetween(ctx context.Context, a, b uuid.UUID) ([]message.Message, error)
	Send(ctx context.Context, cmd commands.SendMessageCommand) (message.Message, error)
	MarkRead(ctx context.Context, cmd commands.MarkReadCommand) error
}

// Sink receives the session's side effects: view updates, notifications
// for threads other than the open one, and async failures.
type Sink interface {
	ConversationsUpdated(conversations []aggregate.Conversation, totalUnread int)
	ThreadUpdated(conversationID string, msgs []message.Message)
	MessageArrived(msg message.Message)
	Failure(err error)
}

// NopSink discards every side effect.
type NopSink struct{}

func (NopSink) ConversationsUpdated([]aggregate.Conversation, int) {}
func (NopSink) ThreadUpdated(string, []message.Message)            {}
func (NopSink) MessageArrived(message.Message)                     {}
func (NopSink) Failure(error)                                      {}

// Session is safe for concurrent use: UI calls and notifier callbacks may
// overlap. In-flight opens race under a generation counter, so the most
// recently requested thread always wins.
type Session struct {
	userID   uuid.UUID
	store    Store
	notifier notify.Notifier
	sink     Sink
	log      *logger.Logger

	mu            sync.Mutex
	state         State
	sending       bool
	conversations []aggregate.Conversation
	totalUnread   int
	openID        string
	buffer        []message.Message
	openGen       uint64
	sub           notify.Subscription
	refreshCtx    context.Context
}

func New(userID uuid.UUID, store Store, notifier notify.Notifier, sink Sink, log *logger.Logger) *Session {
	if sink == nil {
		sink = NopSink{}
	}
	return &Session{
		userID:     userID,
		store:      store,
		notifier:   notifier,
		sink:       sink,
		log:        log,
		state:      StateIdle,
		refreshCtx: context.Background(),
	}
}

// Start subscribes to the user's change feed and performs the initial
// conversation load.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	s.refreshCtx = ctx
	s.mu.Unlock()

	if s.notifier != nil {
		sub, err := s.notifier.Subscribe(ctx, s.userID, s.HandleEvent)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.sub = sub
		s.mu.Unlock()
	}
	return s.LoadConversations(ctx)
}

// Close stops event delivery. The loaded view stays readable.
func (s *Session) Close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

// LoadConversations refreshes the conversation list and the total unread
// count. On failure the previous list is kept, stale but consistent, and
// the error goes to the sink as well as the caller.
func (s *Session) LoadConversations(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateIdle {
		s.state = StateLoadingConversations
	}
	s.mu.Unlock()

	conversations, err := s.store.Conversations(ctx, s.userID)

	s.mu.Lock()
	if err != nil {
		if s.state == StateLoadingConversations {
			s.state = StateReady
		}
		s.mu.Unlock()
		s.sink.Failure(err)
		return err
	}

	s.conversations = conversations
	total := 0
	for _, c := range conversations {
		total += c.UnreadCount
	}
	s.totalUnread = total
	if s.state == StateIdle || s.state == StateLoadingConversations {
		s.state = StateReady
	}
	snapshot := append([]aggregate.Conversation(nil), conversations...)
	s.mu.Unlock()

	s.sink.ConversationsUpdated(snapshot, total)
	return nil
}

// OpenConversation loads the thread behind a stored conversation id. An id
// nothing has been stored under yet opens as an empty thread.
func (s *Session) OpenConversation(ctx context.Context, conversationID string) error {
	gen := s.beginOpen(conversationID)
	msgs, err := s.store.ThreadMessages(ctx, s.userID, conversationID)
	return s.finishOpen(gen, conversationID, msgs, err)
}

// OpenConversationWithUser derives the conversation id for the pair and
// opens that thread, which may have no history yet.
func (s *Session) OpenConversationWithUser(ctx context.Context, otherID uuid.UUID, listingID *uuid.UUID) error {
	if otherID == uuid.Nil {
		return bazaar_errors.Validation("user is required")
	}
	if otherID == s.userID {
		return bazaar_errors.Validation("cannot open a conversation with yourself")
	}

	conversationID := identity.ConversationID(s.userID, otherID, listingID)
	gen := s.beginOpen(conversationID)
	msgs, err := s.store.MessagesBetween(ctx, s.userID, otherID)
	return s.finishOpen(gen, conversationID, msgs, err)
}

// CloseConversation drops the open thread and its buffer and invalidates
// any open still in flight.
func (s *Session) CloseConversation() {
	s.mu.Lock()
	s.openGen++
	s.openID = ""
	s.buffer = nil
	if s.state == StateOpeningConversation || s.state == StateConversationOpen {
		s.state = StateReady
	}
	s.mu.Unlock()
}

func (s *Session) beginOpen(conversationID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openGen++
	s.openID = conversationID
	s.state = StateOpeningConversation
	return s.openGen
}

func (s *Session) finishOpen(gen uint64, conversationID string, msgs []message.Message, err error) error {
	s.mu.Lock()
	if gen != s.openGen {
		// a newer open (or a close) superseded this load; discard it
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		s.openID = ""
		s.buffer = nil
		s.state = StateReady
		s.mu.Unlock()
		s.sink.Failure(err)
		return err
	}

	sortAscending(msgs)
	s.buffer = msgs
	s.state = StateConversationOpen
	snapshot := append([]message.Message(nil), msgs...)
	s.mu.Unlock()

	s.sink.ThreadUpdated(conversationID, snapshot)
	return nil
}

// SendMessage validates, persists and merges one outgoing message. The
// buffer is only appended after the store accepts the message, never
// optimistically, and a successful send always refreshes the conversation
// list so previews and ordering reflect it.
func (s *Session) SendMessage(ctx context.Context, receiverID uuid.UUID, content string, listingID *uuid.UUID) (message.Message, error) {
	cmd := commands.SendMessageCommand{
		SenderID:   s.userID,
		ReceiverID: receiverID,
		Content:    content,
		ListingID:  listingID,
	}
	if err := cmd.Validate(); err != nil {
		return message.Message{}, err
	}
	derivedID := identity.ConversationID(s.userID, receiverID, listingID)

	s.mu.Lock()
	s.sending = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.sending = false
		s.mu.Unlock()
	}()

	msg, err := s.store.Send(ctx, cmd)
	if err != nil {
		s.sink.Failure(err)
		return message.Message{}, err
	}

	s.mu.Lock()
	appended := false
	switch {
	case s.openID == msg.ConversationID:
		appended = s.mergeLocked(msg)
	case s.openID == "" && msg.ConversationID == derivedID:
		// nothing was open; the new thread becomes the open one
		s.openGen++
		s.openID = msg.ConversationID
		s.buffer = []message.Message{msg}
		s.state = StateConversationOpen
		appended = true
	}
	var snapshot []message.Message
	openID := s.openID
	if appended {
		snapshot = append([]message.Message(nil), s.buffer...)
	}
	s.mu.Unlock()

	if appended {
		s.sink.ThreadUpdated(openID, snapshot)
	}

	// sequenced after the insert, so the refreshed list reflects it
	_ = s.LoadConversations(ctx)
	return msg, nil
}

// MarkRead flags the conversation read for this user and refreshes counts.
func (s *Session) MarkRead(ctx context.Context, conversationID string) error {
	err := s.store.MarkRead(ctx, commands.MarkReadCommand{ConversationID: conversationID, ReaderID: s.userID})
	if err != nil {
		s.sink.Failure(err)
		return err
	}
	s.patchRead(conversationID, s.userID)
	return s.LoadConversations(ctx)
}

// HandleEvent ingests one pushed change. Events are advisory and may
// arrive out of order relative to store responses; merges de-duplicate by
// message id and list refreshes re-read the store.
func (s *Session) HandleEvent(envelope events.Envelope) {
	switch envelope.EventType {
	case events.EventTypeMessageCreated:
		var payload events.MessageCreatedPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			if s.log != nil {
				s.log.Warnf("malformed %s payload: %v", envelope.EventType, err)
			}
			return
		}
		s.onMessageCreated(payload.Message)
	case events.EventTypeMessageRead:
		var payload events.MessageReadPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			if s.log != nil {
				s.log.Warnf("malformed %s payload: %v", envelope.EventType, err)
			}
			return
		}
		s.patchRead(payload.ConversationID, payload.ReaderID)
		s.refresh()
	}
}

func (s *Session) onMessageCreated(msg message.Message) {
	s.mu.Lock()
	inOpen := s.openID != "" && msg.ConversationID == s.openID && s.state == StateConversationOpen
	merged := false
	var snapshot []message.Message
	if inOpen {
		merged = s.mergeLocked(msg)
		if merged {
			snapshot = append([]message.Message(nil), s.buffer...)
		}
	}
	openID := s.openID
	s.mu.Unlock()

	if merged {
		s.sink.ThreadUpdated(openID, snapshot)
	}
	if !inOpen && msg.ReceiverID == s.userID {
		s.sink.MessageArrived(msg)
	}
	s.refresh()
}

// patchRead applies a read-state change to the open buffer when it
// concerns the open thread.
func (s *Session) patchRead(conversationID string, readerID uuid.UUID) {
	s.mu.Lock()
	patched := false
	if s.openID == conversationID {
		for i := range s.buffer {
			if s.buffer[i].ReceiverID == readerID && !s.buffer[i].Read {
				s.buffer[i].Read = true
				patched = true
			}
		}
	}
	var snapshot []message.Message
	openID := s.openID
	if patched {
		snapshot = append([]message.Message(nil), s.buffer...)
	}
	s.mu.Unlock()

	if patched {
		s.sink.ThreadUpdated(openID, snapshot)
	}
}

// refresh re-reads the conversation list in the background so unread
// counts and previews stay correct after pushed changes.
func (s *Session) refresh() {
	s.mu.Lock()
	ctx := s.refreshCtx
	s.mu.Unlock()
	go func() {
		_ = s.LoadConversations(ctx)
	}()
}

// mergeLocked inserts msg into the buffer unless already present, keeping
// ascending order. Callers hold s.mu.
func (s *Session) mergeLocked(msg message.Message) bool {
	for _, existing := range s.buffer {
		if existing.ID == msg.ID {
			return false
		}
	}
	s.buffer = append(s.buffer, msg)
	sortAscending(s.buffer)
	return true
}

func sortAscending(msgs []message.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[j].MoreRecent(msgs[i])
	})
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Sending reports whether a send is in flight.
func (s *Session) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// OpenConversationID returns the id of the open thread, "" when none.
func (s *Session) OpenConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openID
}

// Conversations returns a copy of the loaded conversation list.
func (s *Session) Conversations() []aggregate.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]aggregate.Conversation(nil), s.conversations...)
}

// Messages returns a copy of the open thread's buffer.
func (s *Session) Messages() []message.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]message.Message(nil), s.buffer...)
}

// TotalUnread returns the sum of per-conversation unread counts.
func (s *Session) TotalUnread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalUnread
}
