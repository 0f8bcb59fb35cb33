/*
Package chat implements the realtime gateway: connection lifecycle, history,
message posting with sanitization, authorized deletion, and broadcast.

This file defines the Gateway, the decision core of the component. It is
constructed with explicit store and sanitizer capabilities so it can be
exercised in isolation, without a WebSocket or a database.
*/
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mikuchat/internal/app/user"
	"mikuchat/internal/pkg/logx"
)

// Gateway operation errors. The connection layer maps these onto structured
// error events for the requester.
var (
	// ErrPermissionDenied: the requester is neither the message owner nor a
	// moderator or admin.
	ErrPermissionDenied = errors.New("not allowed to delete this message")

	// ErrMessageNotFound: the referenced message does not exist.
	ErrMessageNotFound = errors.New("message not found")

	// ErrDeleteFailed: the delete affected zero rows, the message was already
	// gone by the time the statement ran.
	ErrDeleteFailed = errors.New("message could not be deleted")
)

// Sanitizer strips markup from user-supplied text.
type Sanitizer interface {
	Sanitize(text string) string
}

// MessageStore is the persistence capability for chat messages. Write
// atomicity is the store's concern; the gateway issues single-row operations
// only.
type MessageStore interface {
	// Insert persists a message and returns its id and creation timestamp.
	Insert(ctx context.Context, authorID int64, channel, content string) (int64, time.Time, error)

	// History returns up to limit messages for the channel, ordered by
	// creation time ascending, each joined with its author projection.
	History(ctx context.Context, channel string, limit int) ([]Message, error)

	// AuthorID returns the owning user id of a message, or ErrMessageNotFound.
	AuthorID(ctx context.Context, messageID int64) (int64, error)

	// Delete removes the message by id and reports the number of rows affected.
	Delete(ctx context.Context, messageID int64) (int64, error)
}

// Gateway holds the chat decision logic behind the connection layer.
type Gateway struct {
	messages  MessageStore
	sanitizer Sanitizer
	logger    zerolog.Logger
}

// NewGateway constructs a Gateway with its injected capabilities.
func NewGateway(messages MessageStore, sanitizer Sanitizer) *Gateway {
	return &Gateway{
		messages:  messages,
		sanitizer: sanitizer,
		logger:    logx.Logger().With().Str("component", "gateway").Logger(),
	}
}

// History returns a point-in-time snapshot of the channel: up to HistoryLimit
// messages in creation order. An empty channel name means DefaultChannel.
func (g *Gateway) History(ctx context.Context, channel string) ([]Message, error) {
	if channel == "" {
		channel = DefaultChannel
	}

	history, err := g.messages.History(ctx, channel, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load history for %q: %w", channel, err)
	}

	return history, nil
}

// Post validates, sanitizes and persists a message, then returns the view to
// broadcast. Content that is empty before or after sanitization is a
// deliberate no-op: Post returns (nil, nil) and nothing is persisted.
// Persistence always precedes broadcast; a broadcast failure is never rolled
// back because no such path exists.
func (g *Gateway) Post(ctx context.Context, author user.User, channel, content string) (*Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	clean := strings.TrimSpace(g.sanitizer.Sanitize(content))
	if clean == "" {
		return nil, nil
	}

	if channel == "" {
		channel = DefaultChannel
	}

	id, createdAt, err := g.messages.Insert(ctx, author.ID, channel, clean)
	if err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	return &Message{
		ID:        id,
		Content:   clean,
		Channel:   channel,
		CreatedAt: createdAt,
		Author: AuthorRef{
			ID:        author.ID,
			Username:  author.Username,
			AvatarURL: author.AvatarURL,
		},
	}, nil
}

// Delete removes a message if the requester is authorized: moderators and
// admins may delete anything, everyone else only their own messages. On
// success the caller broadcasts the deletion notice; on failure one of the
// package errors (or a wrapped store error) describes what to report.
func (g *Gateway) Delete(ctx context.Context, requester user.User, messageID int64) error {
	authorID, err := g.messages.AuthorID(ctx, messageID)
	if err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("look up message %d: %w", messageID, err)
	}

	if !requester.Role.CanModerate() && authorID != requester.ID {
		g.logger.Warn().
			Int64("message_id", messageID).
			Int64("user_id", requester.ID).
			Msg("Unauthorized message delete attempt")
		return ErrPermissionDenied
	}

	affected, err := g.messages.Delete(ctx, messageID)
	if err != nil {
		return fmt.Errorf("delete message %d: %w", messageID, err)
	}

	if affected == 0 {
		return ErrDeleteFailed
	}

	g.logger.Info().
		Int64("message_id", messageID).
		Int64("user_id", requester.ID).
		Str("username", requester.Username).
		Msg("Message deleted")

	return nil
}
