package memory

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vultisig/inform-ai/internal/session"
	"github.com/vultisig/inform-ai/internal/types"
)

// ErrNotFound is returned when a session is not found.
var ErrNotFound = errors.New("not found")

// EventHandlerFactory builds the event handler for a new conversation.
type EventHandlerFactory func(conversationID string) session.EventHandler

// SessionRepository keeps live sessions in process memory.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*session.Store

	onEvent EventHandlerFactory
	logger  *logrus.Logger
}

// NewSessionRepository creates a new SessionRepository. onEvent may be nil.
func NewSessionRepository(onEvent EventHandlerFactory, logger *logrus.Logger) *SessionRepository {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SessionRepository{
		sessions: make(map[string]*session.Store),
		onEvent:  onEvent,
		logger:   logger,
	}
}

// Create starts a new session.
func (r *SessionRepository) Create() *session.Store {
	id := uuid.NewString()
	opts := []session.Option{session.WithID(id), session.WithLogger(r.logger)}
	if r.onEvent != nil {
		opts = append(opts, session.WithEventHandler(r.onEvent(id)))
	}
	store := session.New(opts...)

	r.mu.Lock()
	r.sessions[id] = store
	r.mu.Unlock()

	r.logger.WithField("conversation_id", id).Info("session created")
	return store
}

// GetByID returns a live session.
func (r *SessionRepository) GetByID(id string) (*session.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return store, nil
}

// List returns the conversations of all live sessions, oldest first.
func (r *SessionRepository) List() []types.Conversation {
	r.mu.RLock()
	convs := make([]types.Conversation, 0, len(r.sessions))
	for _, store := range r.sessions {
		convs = append(convs, store.Conversation())
	}
	r.mu.RUnlock()

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].CreatedAt.Before(convs[j].CreatedAt)
	})
	return convs
}

// Delete ends a session and closes its subscriptions.
func (r *SessionRepository) Delete(id string) error {
	r.mu.Lock()
	store, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	store.Close()
	r.logger.WithField("conversation_id", id).Info("session ended")
	return nil
}

// Close ends every session.
func (r *SessionRepository) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, store := range r.sessions {
		store.Close()
		delete(r.sessions, id)
	}
}
