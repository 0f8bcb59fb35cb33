package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mikuchat/internal/app/chat"
)

// MessageRepository implements chat.MessageStore on top of the pgx pool.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository wires the repository to a connection pool.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

var _ chat.MessageStore = (*MessageRepository)(nil)

// Insert persists a message. Referential integrity of the author is enforced
// by the messages.user_id foreign key.
func (r *MessageRepository) Insert(ctx context.Context, authorID int64, channel, content string) (int64, time.Time, error) {
	query := `INSERT INTO messages (user_id, channel, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	var id int64
	var createdAt time.Time

	if err := r.pool.QueryRow(ctx, query, authorID, channel, content).Scan(&id, &createdAt); err != nil {
		return 0, time.Time{}, fmt.Errorf("db error: %w", err)
	}

	return id, createdAt, nil
}

// History returns up to limit messages of the channel in creation order,
// each joined with its author projection.
func (r *MessageRepository) History(ctx context.Context, channel string, limit int) ([]chat.Message, error) {
	query := `SELECT m.id, m.content, m.channel, m.created_at,
			u.id, u.username, COALESCE(u.avatar_url, '')
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.channel = $1
		ORDER BY m.created_at ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, channel, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	messages := make([]chat.Message, 0, limit)
	for rows.Next() {
		var m chat.Message
		err := rows.Scan(&m.ID, &m.Content, &m.Channel, &m.CreatedAt,
			&m.Author.ID, &m.Author.Username, &m.Author.AvatarURL)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return messages, nil
}

// AuthorID returns the owning user id of a message.
func (r *MessageRepository) AuthorID(ctx context.Context, messageID int64) (int64, error) {
	query := `SELECT user_id FROM messages WHERE id = $1`

	var authorID int64
	if err := r.pool.QueryRow(ctx, query, messageID).Scan(&authorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, chat.ErrMessageNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return authorID, nil
}

// Delete removes the message by id and reports the rows affected.
func (r *MessageRepository) Delete(ctx context.Context, messageID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, messageID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}
