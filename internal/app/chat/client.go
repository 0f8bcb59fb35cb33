/*
Package chat implements the realtime gateway: connection lifecycle, history,
message posting with sanitization, authorized deletion, and broadcast.

This file defines the Client, one accepted WebSocket connection tagged with
its resolved user. The read pump handles inbound events in arrival order for
the connection; the write pump drains the send queue and keeps the heartbeat.
*/
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"mikuchat/internal/app/user"
	"mikuchat/internal/pkg/logx"
)

const (
	// writeWait bounds a single write to the connection.
	writeWait = 10 * time.Second

	// pongWait is how long the server waits for a pong before dropping the
	// connection.
	pongWait = 60 * time.Second

	// pingPeriod is the heartbeat interval; it must be below pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize caps an inbound frame in bytes.
	maxMessageSize = 8192

	// MaxContentBytes caps message content length.
	MaxContentBytes = 5000

	// opTimeout bounds each store-backed operation triggered by an event.
	opTimeout = 10 * time.Second
)

// Client is an accepted connection bound to its authenticated user.
type Client struct {
	hub     *Hub
	gateway *Gateway
	conn    *websocket.Conn
	user    user.User

	// send queues outbound frames for the write pump. It is never closed;
	// the done channel signals the write pump to exit instead, so queueing
	// a frame is always safe even after the hub has dropped the client.
	send     chan []byte
	done     chan struct{}
	dropOnce sync.Once

	logger zerolog.Logger
}

// NewClient wraps an upgraded connection. The user must already be resolved
// and verified; no unauthenticated Client ever exists.
func NewClient(hub *Hub, gateway *Gateway, conn *websocket.Conn, u user.User) *Client {
	return &Client{
		hub:     hub,
		gateway: gateway,
		conn:    conn,
		user:    u,
		send:    make(chan []byte, 256),
		done:    make(chan struct{}),
		logger: logx.Logger().With().
			Int64("user_id", u.ID).
			Str("username", u.Username).
			Logger(),
	}
}

// User returns the identity the connection was accepted with.
func (c *Client) User() user.User {
	return c.user
}

// SendProfile pushes the connecting user's own non-credential profile fields
// to this connection only. Called exactly once, right after acceptance.
func (c *Client) SendProfile() {
	c.sendEvent(Event{
		Type: EventUserProfile,
		Payload: ProfilePayload{
			Username:  c.user.Username,
			Email:     c.user.Email,
			AvatarURL: c.user.AvatarURL,
			Role:      c.user.Role.String(),
			Bio:       c.user.Bio,
		},
	})
}

// ReadPump consumes inbound frames until the connection drops, handling the
// events of one connection strictly in arrival order.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection read ended unexpectedly")
			}
			break
		}

		c.processInbound(frame)
	}
}

// cleanupOnDisconnect detaches the client. Disconnects change no persisted
// state; this is membership cleanup and logging only.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("User disconnected from chat")

	c.hub.Unregister(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error during cleanup")
	}
}

func (c *Client) processInbound(frame []byte) {
	var inbound struct {
		Type    EventType       `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	if err := json.Unmarshal(frame, &inbound); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Type {
	case EventRequestHistory:
		c.handleHistoryRequest(inbound.Payload)

	case EventSendMessage:
		c.handleSendMessage(inbound.Payload)

	case EventDeleteMessage:
		c.handleDeleteMessage(inbound.Payload)

	default:
		c.logger.Warn().Str("event_type", string(inbound.Type)).Msg("Client sent unsupported event type")
	}
}

// handleHistoryRequest answers with a snapshot of the channel. A store
// failure is reported to the requester only and never drops the connection.
func (c *Client) handleHistoryRequest(payload json.RawMessage) {
	var request HistoryRequestPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &request); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid history request payload")
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	history, err := c.gateway.History(ctx, request.Channel)
	if err != nil {
		c.logger.Error().Err(err).Str("channel", request.Channel).Msg("Failed to load chat history")
		c.sendEvent(Event{Type: EventChatHistory, Payload: HistoryPayload{Error: "Could not load chat history."}})
		return
	}

	if history == nil {
		history = []Message{}
	}

	c.sendEvent(Event{Type: EventChatHistory, Payload: HistoryPayload{History: history}})
}

// handleSendMessage runs the sanitize-persist-broadcast path. Content the
// gateway drops silently produces neither an error nor a broadcast.
func (c *Client) handleSendMessage(payload json.RawMessage) {
	var submission SendMessagePayload
	if err := json.Unmarshal(payload, &submission); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid message payload")
		return
	}

	if len(submission.Content) > MaxContentBytes {
		c.sendError("message_too_long", "Message is too long.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	message, err := c.gateway.Post(ctx, c.user, submission.Channel, submission.Content)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to persist message")
		return
	}

	if message == nil {
		return
	}

	c.hub.Broadcast(message.Channel, Event{Type: EventReceiveMessage, Payload: message})
}

// handleDeleteMessage enforces the delete authorization rule and, on success,
// broadcasts the deletion notice to the global channel so every client can
// drop the message from view.
func (c *Client) handleDeleteMessage(payload json.RawMessage) {
	var request DeleteMessagePayload
	if err := json.Unmarshal(payload, &request); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid delete payload")
		return
	}

	if request.MessageID == 0 {
		c.sendError("invalid_request", "Message ID not provided.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := c.gateway.Delete(ctx, c.user, request.MessageID)
	switch {
	case err == nil:
		c.hub.Broadcast(DefaultChannel, Event{
			Type:    EventMessageDeleted,
			Payload: MessageDeletedPayload{MessageID: request.MessageID},
		})

	case errors.Is(err, ErrMessageNotFound):
		c.sendError("not_found", "Message not found.")

	case errors.Is(err, ErrPermissionDenied):
		c.sendError("permission_denied", "You do not have permission to delete this message.")

	case errors.Is(err, ErrDeleteFailed):
		c.sendError("delete_failed", "The message could not be deleted.")

	default:
		c.logger.Error().Err(err).Int64("message_id", request.MessageID).Msg("Delete request failed")
		c.sendError("server_error", "Internal server error while deleting the message.")
	}
}

// sendError emits a structured, connection-local error event.
func (c *Client) sendError(errType, message string) {
	c.sendEvent(Event{Type: EventError, Payload: ErrorPayload{Type: errType, Message: message}})
}

// sendEvent marshals the event and queues it for the write pump. A full
// queue or a dropped client loses the frame; broadcasts carry no delivery
// guarantee.
func (c *Client) sendEvent(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		c.logger.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to marshal event")
		return
	}

	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, frame dropped")
	}
}

// drop signals the write pump to exit, exactly once. The send queue itself
// is never closed so that concurrent sendEvent calls stay safe.
func (c *Client) drop() {
	c.dropOnce.Do(func() {
		close(c.done)
	})
}

// WritePump writes queued frames to the connection and keeps the heartbeat.
// It exits when the client is dropped or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in write pump")
		}
	}()

	for {
		select {
		case <-c.done:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err == nil {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close frame")
				}
			}
			return

		case frame := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Error().Err(err).Msg("Error writing frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
