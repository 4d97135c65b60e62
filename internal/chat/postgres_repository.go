package chat

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL chat repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetSession retrieves a session by ID.
func (r *PostgresRepository) GetSession(ctx context.Context, id string) (*Session, error) {
	query := `
		SELECT id, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1
	`

	var session Session
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return &session, nil
}

// CreateSession creates a new session.
func (r *PostgresRepository) CreateSession(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO chat_sessions (id, created_at, updated_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, session.ID, session.CreatedAt, session.UpdatedAt)
	return err
}

// AppendMessage appends a message to a session's history.
func (r *PostgresRepository) AppendMessage(ctx context.Context, msg *Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO chat_messages (session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := tx.Exec(ctx, insert, msg.SessionID, msg.Role, msg.Content, msg.CreatedAt); err != nil {
		return err
	}

	touch := `UPDATE chat_sessions SET updated_at = $2 WHERE id = $1`

	result, err := tx.Exec(ctx, touch, msg.SessionID, msg.CreatedAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return tx.Commit(ctx)
}

// History retrieves a session's messages in chronological order.
func (r *PostgresRepository) History(ctx context.Context, sessionID string) ([]Message, error) {
	if _, err := r.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	query := `
		SELECT session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var msg Message
		err := rows.Scan(
			&msg.SessionID,
			&msg.Role,
			&msg.Content,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return msgs, nil
}

// DeleteSession deletes a session and its messages.
func (r *PostgresRepository) DeleteSession(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM chat_messages WHERE session_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
