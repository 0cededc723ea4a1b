package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tripmate/internal/ai"
)

// Store handles chat_messages persistence.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Append inserts entries in one batch. created_at is spaced by a microsecond so order survives ties.
func (s *Store) Append(ctx context.Context, userID string, msgs []ai.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for i, m := range msgs {
		if m.Role != ai.RoleUser && m.Role != ai.RoleAssistant {
			return ErrInvalidRole
		}
		batch.Queue(`
			INSERT INTO chat_messages (id, user_id, role, content, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.NewString(), userID, string(m.Role), m.Content, now.Add(time.Duration(i)*time.Microsecond))
	}
	return s.db.SendBatch(ctx, batch).Close()
}

// Recent returns the newest limit entries in ascending time order.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, role, content, created_at FROM (
			SELECT id, user_id, role, content, created_at
			FROM chat_messages
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e    Entry
			role string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &role, &e.Content, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Role = ai.Role(role)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clear deletes every entry for userID and reports how many were removed.
func (s *Store) Clear(ctx context.Context, userID string) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM chat_messages WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
