package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/agent"
)

// Service errors.
var (
	ErrEmptyMessage   = errors.New("message must not be empty")
	ErrMessageTooLong = fmt.Errorf("message exceeds %d characters", MaxMessageLength)
)

// Runner produces an answer to a question given prior conversation turns.
type Runner interface {
	Run(ctx context.Context, history []agent.Message, question string) (string, error)
	RunStream(ctx context.Context, history []agent.Message, question string, onChunk func(string)) (string, error)
}

// Exchange is the outcome of one chat turn.
type Exchange struct {
	SessionID string
	Answer    string
}

// ServiceConfig holds configuration for the chat service.
type ServiceConfig struct {
	// Repo persists sessions and messages (required).
	Repo Repository

	// Agent answers user questions (required).
	Agent Runner

	// Logger for chat operations.
	Logger zerolog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Service threads conversation history through the agent and records
// both sides of each exchange.
type Service struct {
	repo   Repository
	agent  Runner
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new chat service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		repo:   cfg.Repo,
		agent:  cfg.Agent,
		logger: cfg.Logger,
		now:    cfg.Now,
	}
}

// Chat runs one conversation turn. An empty or unknown sessionID
// starts a new session.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*Exchange, error) {
	return s.chat(ctx, sessionID, message, nil)
}

// ChatStream runs one conversation turn, delivering the answer
// incrementally through onChunk before returning the full exchange.
func (s *Service) ChatStream(ctx context.Context, sessionID, message string, onChunk func(string)) (*Exchange, error) {
	return s.chat(ctx, sessionID, message, onChunk)
}

func (s *Service) chat(ctx context.Context, sessionID, message string, onChunk func(string)) (*Exchange, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if len(message) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	session, err := s.resolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history, err := s.agentHistory(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	if err := s.append(ctx, session.ID, RoleUser, message); err != nil {
		return nil, err
	}

	var answer string
	if onChunk != nil {
		answer, err = s.agent.RunStream(ctx, history, message, onChunk)
	} else {
		answer, err = s.agent.Run(ctx, history, message)
	}
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}

	if err := s.append(ctx, session.ID, RoleAssistant, answer); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("session_id", session.ID).
		Int("history_len", len(history)).
		Msg("chat turn completed")

	return &Exchange{SessionID: session.ID, Answer: answer}, nil
}

// History retrieves a session's messages in chronological order.
func (s *Service) History(ctx context.Context, sessionID string) ([]Message, error) {
	return s.repo.History(ctx, sessionID)
}

// Delete removes a session and its history. Deleting an unknown
// session is not an error.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	return s.repo.DeleteSession(ctx, sessionID)
}

// resolveSession loads an existing session, or creates one when no ID
// was supplied or the supplied ID is unknown.
func (s *Service) resolveSession(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID != "" {
		session, err := s.repo.GetSession(ctx, sessionID)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
	}

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	now := s.now()
	session := &Session{
		ID:        sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info().Str("session_id", session.ID).Msg("created chat session")
	return session, nil
}

// agentHistory converts stored messages into agent turns, keeping only
// the most recent ones.
func (s *Service) agentHistory(ctx context.Context, sessionID string) ([]agent.Message, error) {
	msgs, err := s.repo.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// One turn is a user message plus the assistant reply.
	if max := MaxHistoryTurns * 2; len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}

	history := make([]agent.Message, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, agent.Message{Role: agent.Role(m.Role), Content: m.Content})
	}
	return history, nil
}

func (s *Service) append(ctx context.Context, sessionID, role, content string) error {
	return s.repo.AppendMessage(ctx, &Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: s.now(),
	})
}
