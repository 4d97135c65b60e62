package chat

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Sessions are lost on restart. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	messages map[string][]Message
}

// NewInMemoryRepository creates a new in-memory chat repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		sessions: make(map[string]*Session),
		messages: make(map[string][]Message),
	}
}

// GetSession retrieves a session by ID.
func (r *InMemoryRepository) GetSession(_ context.Context, id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	// Return a copy
	cpy := *s
	return &cpy, nil
}

// CreateSession creates a new session.
func (r *InMemoryRepository) CreateSession(_ context.Context, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *session
	r.sessions[session.ID] = &cpy
	return nil
}

// AppendMessage appends a message to a session's history.
func (r *InMemoryRepository) AppendMessage(_ context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[msg.SessionID]
	if !ok {
		return ErrSessionNotFound
	}

	r.messages[msg.SessionID] = append(r.messages[msg.SessionID], *msg)
	s.UpdatedAt = time.Now()
	return nil
}

// History retrieves a session's messages in chronological order.
func (r *InMemoryRepository) History(_ context.Context, sessionID string) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return nil, ErrSessionNotFound
	}

	msgs := r.messages[sessionID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// DeleteSession deletes a session and its messages.
func (r *InMemoryRepository) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	delete(r.messages, id)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
