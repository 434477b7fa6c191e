// Package session holds the per-conversation message log that UI components
// publish their state and events into.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/inform-ai/internal/types"
)

// EventHandler is notified synchronously after AddEventMessage appends.
type EventHandler func(msg types.Message) error

// Option configures a Store.
type Option func(*Store)

// WithEventHandler registers the notification callback for AddEventMessage.
func WithEventHandler(h EventHandler) Option {
	return func(s *Store) { s.onEvent = h }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithID pins the conversation id instead of generating one.
func WithID(id string) Option {
	return func(s *Store) { s.conversation.ID = id }
}

// Store is the append-only message log of a single conversation.
type Store struct {
	mu           sync.RWMutex
	conversation types.Conversation
	messages     []types.Message

	onEvent EventHandler
	now     func() time.Time
	logger  *logrus.Logger

	subsMu sync.Mutex
	subs   map[int]chan types.Message
	nextID int
}

// New starts a new conversation.
func New(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		logger: logrus.StandardLogger(),
		subs:   make(map[int]chan types.Message),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.conversation.ID == "" {
		s.conversation.ID = uuid.NewString()
	}
	now := s.now()
	s.conversation.CreatedAt = now
	s.conversation.LastSentAt = now
	return s
}

// Conversation returns a snapshot of the conversation metadata.
func (s *Store) Conversation() types.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conversation
}

// Messages returns a copy of the whole log.
func (s *Store) Messages() []types.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Message(nil), s.messages...)
}

// AddMessage appends msg. Missing ID and CreatedAt are filled in; a message
// whose payload does not match its type is rejected.
func (s *Store) AddMessage(msg types.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.nextTimestampLocked()
	}
	s.appendLocked(msg)
	s.mu.Unlock()
	return nil
}

// AddState appends a new state message for state.
func (s *Store) AddState(state types.ComponentState) types.Message {
	s.mu.Lock()
	msg := types.NewStateMessage(uuid.NewString(), s.nextTimestampLocked(), state)
	s.appendLocked(msg)
	s.mu.Unlock()
	return msg
}

// AddStateMessage appends a caller-built state message.
func (s *Store) AddStateMessage(msg types.Message) error {
	if msg.Type != types.MessageTypeState {
		return fmt.Errorf("%w: expected state message, got %q", types.ErrInvalidMessage, msg.Type)
	}
	return s.AddMessage(msg)
}

// AddEvent appends a new event message for event.
func (s *Store) AddEvent(event types.ComponentEvent) types.Message {
	s.mu.Lock()
	msg := types.NewEventMessage(uuid.NewString(), s.nextTimestampLocked(), event)
	s.appendLocked(msg)
	s.mu.Unlock()
	return msg
}

// AddEventMessage appends a caller-built event message and then invokes the
// registered event handler once. A handler error is returned as is; the
// message stays in the log.
func (s *Store) AddEventMessage(msg types.Message) error {
	if msg.Type != types.MessageTypeEvent {
		return fmt.Errorf("%w: expected event message, got %q", types.ErrInvalidMessage, msg.Type)
	}
	if err := s.AddMessage(msg); err != nil {
		return err
	}
	if s.onEvent == nil {
		return nil
	}
	return s.onEvent(msg)
}

// GetState returns the most recent state published for componentID.
func (s *Store) GetState(componentID string) (types.ComponentState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if state := s.latestStateLocked(componentID); state != nil {
		return state.Clone(), true
	}
	return types.ComponentState{}, false
}

// UpdateState appends the latest state of componentID merged with updates.
// When the component has no state yet, updates is appended as is.
func (s *Store) UpdateState(componentID string, updates types.ComponentState) types.Message {
	s.mu.Lock()
	next := updates
	if prev := s.latestStateLocked(componentID); prev != nil {
		next = prev.Merge(updates)
	}
	msg := types.NewStateMessage(uuid.NewString(), s.nextTimestampLocked(), next)
	s.appendLocked(msg)
	s.mu.Unlock()
	return msg
}

// GetMessagesSince returns the messages created strictly after since.
func (s *Store) GetMessagesSince(since time.Time) []types.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sinceLocked(since)
}

// GetRecentMessages returns the messages not yet sent.
func (s *Store) GetRecentMessages() []types.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sinceLocked(s.conversation.LastSentAt)
}

// PopRecentMessages returns the unsent messages and advances the send cursor.
func (s *Store) PopRecentMessages() []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popLocked(s.conversation.LastSentAt)
}

// PopMessagesSince returns the messages after since and advances the send
// cursor.
func (s *Store) PopMessagesSince(since time.Time) []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popLocked(since)
}

// ClearRecentMessages drops every unsent message without moving the cursor.
func (s *Store) ClearRecentMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(s.conversation.LastSentAt)
}

// ClearMessagesSince drops every message created after since.
func (s *Store) ClearMessagesSince(since time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(since)
}

// Split partitions the log around the send cursor.
func (s *Store) Split() (sent, unsent []types.Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sent = []types.Message{}
	unsent = []types.Message{}
	for _, msg := range s.messages {
		if msg.CreatedAt.After(s.conversation.LastSentAt) {
			unsent = append(unsent, msg)
		} else {
			sent = append(sent, msg)
		}
	}
	return sent, unsent
}

// Subscribe returns a feed of messages appended from now on and a function
// that cancels the subscription. Slow subscribers miss messages rather than
// block writers.
func (s *Store) Subscribe(buffer int) (<-chan types.Message, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan types.Message, buffer)

	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
		})
	}
}

// Close cancels every subscription.
func (s *Store) Close() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Store) publish(msg types.Message) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- msg:
		default:
			s.logger.WithFields(logrus.Fields{
				"conversation_id": s.conversation.ID,
				"message_id":      msg.ID,
			}).Debug("subscriber buffer full, dropping message")
		}
	}
}

// appendLocked publishes before the write lock is released so subscribers see
// messages in log order.
func (s *Store) appendLocked(msg types.Message) {
	s.messages = append(s.messages, msg)
	s.publish(msg)
}

// nextTimestampLocked never goes back past the newest message and always lands
// after the send cursor, so a message added right after a pop counts as unsent.
func (s *Store) nextTimestampLocked() time.Time {
	ts := s.now()
	if n := len(s.messages); n > 0 && ts.Before(s.messages[n-1].CreatedAt) {
		ts = s.messages[n-1].CreatedAt
	}
	if !ts.After(s.conversation.LastSentAt) {
		ts = s.conversation.LastSentAt.Add(time.Nanosecond)
	}
	return ts
}

func (s *Store) latestStateLocked(componentID string) *types.ComponentState {
	for i := len(s.messages) - 1; i >= 0; i-- {
		msg := s.messages[i]
		if msg.Type == types.MessageTypeState && msg.State != nil && msg.State.ComponentID == componentID {
			return msg.State
		}
	}
	return nil
}

func (s *Store) sinceLocked(since time.Time) []types.Message {
	out := []types.Message{}
	for _, msg := range s.messages {
		if msg.CreatedAt.After(since) {
			out = append(out, msg)
		}
	}
	return out
}

func (s *Store) popLocked(cutoff time.Time) []types.Message {
	recent := s.sinceLocked(cutoff)

	sentAt := s.now()
	if n := len(s.messages); n > 0 && sentAt.Before(s.messages[n-1].CreatedAt) {
		sentAt = s.messages[n-1].CreatedAt
	}
	if sentAt.Before(s.conversation.LastSentAt) {
		sentAt = s.conversation.LastSentAt
	}
	s.conversation.LastSentAt = sentAt

	s.logger.WithFields(logrus.Fields{
		"conversation_id": s.conversation.ID,
		"count":           len(recent),
	}).Debug("popped recent messages")
	return recent
}

func (s *Store) clearLocked(cutoff time.Time) {
	kept := s.messages[:0:0]
	for _, msg := range s.messages {
		if !msg.CreatedAt.After(cutoff) {
			kept = append(kept, msg)
		}
	}
	s.messages = kept
}
