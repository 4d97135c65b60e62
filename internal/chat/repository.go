package chat

import "context"

// Repository defines the interface for session and message persistence.
type Repository interface {
	// GetSession retrieves a session by ID.
	// Returns ErrSessionNotFound if the session doesn't exist.
	GetSession(ctx context.Context, id string) (*Session, error)

	// CreateSession creates a new session.
	CreateSession(ctx context.Context, session *Session) error

	// AppendMessage appends a message to a session's history and
	// bumps the session's updated time.
	AppendMessage(ctx context.Context, msg *Message) error

	// History retrieves a session's messages in chronological order.
	History(ctx context.Context, sessionID string) ([]Message, error)

	// DeleteSession deletes a session and its messages.
	DeleteSession(ctx context.Context, id string) error
}
