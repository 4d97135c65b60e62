// Package chat manages conversation sessions and message history.
package chat

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrSessionNotFound = errors.New("session not found")
)

// Message roles stored with each history entry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Validation constants.
const (
	MaxMessageLength = 4000
	MaxHistoryTurns  = 20
)

// Session represents a conversation session.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a single entry in a session's history.
type Message struct {
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}
