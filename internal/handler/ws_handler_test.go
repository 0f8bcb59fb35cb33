package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"mikuchat/internal/app/chat"
	"mikuchat/internal/app/user"
)

func wsURL(t *testing.T, env *testEnv, token string) string {
	t.Helper()
	u := strings.Replace(env.server.URL, "http://", "ws://", 1) + "/ws"
	if token != "" {
		u += "?token=" + token
	}
	return u
}

// dialAndExpectProfile connects and consumes the initial user_profile event.
func dialAndExpectProfile(t *testing.T, env *testEnv, u *user.User) *websocket.Conn {
	t.Helper()

	token, err := mintSessionToken(u, env.deps.Config.JWTSecret)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(t, env, token), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	event := readEvent(t, conn)
	if event.Type != chat.EventUserProfile {
		t.Fatalf("first event: got %q want %q", event.Type, chat.EventUserProfile)
	}

	var profile chat.ProfilePayload
	mustUnmarshal(t, event.Payload, &profile)
	if profile.Username != u.Username || profile.Email != u.Email {
		t.Fatalf("profile mismatch: %+v", profile)
	}

	return conn
}

type rawEvent struct {
	Type    chat.EventType  `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readEvent(t *testing.T, conn *websocket.Conn) rawEvent {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(3 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}

	var event rawEvent
	if err := json.Unmarshal(frame, &event); err != nil {
		t.Fatalf("frame is not an event: %v", err)
	}
	return event
}

func writeEvent(t *testing.T, conn *websocket.Conn, eventType chat.EventType, payload any) {
	t.Helper()

	frame, err := json.Marshal(map[string]any{"type": eventType, "payload": payload})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func mustUnmarshal(t *testing.T, data json.RawMessage, dst any) {
	t.Helper()
	if err := json.Unmarshal(data, dst); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
}

func TestWebSocket_RejectsBadHandshakes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	cases := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not.a.jwt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, res, err := websocket.DefaultDialer.Dial(wsURL(t, env, tc.token), nil)
			if err == nil {
				t.Fatal("expected the dial to fail")
			}
			if res == nil || res.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected a 401 handshake response, got %+v", res)
			}
		})
	}
}

func TestWebSocket_RejectsTokenForDeletedAccount(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	ghost := &user.User{ID: 999, Username: "ghost", Role: user.RoleUser}
	token, err := mintSessionToken(ghost, env.deps.Config.JWTSecret)
	if err != nil {
		t.Fatal(err)
	}

	_, res, err := websocket.DefaultDialer.Dial(wsURL(t, env, token), nil)
	if err == nil {
		t.Fatal("expected the dial to fail")
	}
	if res == nil || res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected a 401 handshake response, got %+v", res)
	}
}

func TestWebSocket_SendAndReceive(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	alice := env.seedUser(t, "alice chan", "alice@example.com", "secret123", user.RoleUser)
	bob := env.seedUser(t, "bob kun", "bob@example.com", "secret123", user.RoleUser)

	aliceConn := dialAndExpectProfile(t, env, alice)
	bobConn := dialAndExpectProfile(t, env, bob)

	writeEvent(t, aliceConn, chat.EventSendMessage, chat.SendMessagePayload{Content: "  <b>hello</b> world  "})

	for name, conn := range map[string]*websocket.Conn{"sender": aliceConn, "other": bobConn} {
		event := readEvent(t, conn)
		if event.Type != chat.EventReceiveMessage {
			t.Fatalf("%s: event type got %q want %q", name, event.Type, chat.EventReceiveMessage)
		}

		var msg chat.Message
		mustUnmarshal(t, event.Payload, &msg)
		if msg.Content != "hello world" {
			t.Errorf("%s: content got %q want %q", name, msg.Content, "hello world")
		}
		if msg.Author.ID != alice.ID || msg.Author.Username != alice.Username {
			t.Errorf("%s: author mismatch: %+v", name, msg.Author)
		}
		if msg.Channel != chat.DefaultChannel {
			t.Errorf("%s: channel got %q", name, msg.Channel)
		}
	}
}

func TestWebSocket_EmptyMessageIsDropped(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	alice := env.seedUser(t, "alice chan", "alice@example.com", "secret123", user.RoleUser)
	conn := dialAndExpectProfile(t, env, alice)

	writeEvent(t, conn, chat.EventSendMessage, chat.SendMessagePayload{Content: "   "})
	writeEvent(t, conn, chat.EventSendMessage, chat.SendMessagePayload{Content: "<script>x</script>"})

	// A real message afterwards must be the next frame: the empty ones
	// produced neither a broadcast nor an error.
	writeEvent(t, conn, chat.EventSendMessage, chat.SendMessagePayload{Content: "visible"})

	event := readEvent(t, conn)
	if event.Type != chat.EventReceiveMessage {
		t.Fatalf("event type: got %q want %q", event.Type, chat.EventReceiveMessage)
	}
	var msg chat.Message
	mustUnmarshal(t, event.Payload, &msg)
	if msg.Content != "visible" {
		t.Errorf("content: got %q", msg.Content)
	}
}

func TestWebSocket_History(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	alice := env.seedUser(t, "alice chan", "alice@example.com", "secret123", user.RoleUser)
	conn := dialAndExpectProfile(t, env, alice)

	writeEvent(t, conn, chat.EventSendMessage, chat.SendMessagePayload{Content: "first"})
	readEvent(t, conn)
	writeEvent(t, conn, chat.EventSendMessage, chat.SendMessagePayload{Content: "second"})
	readEvent(t, conn)

	writeEvent(t, conn, chat.EventRequestHistory, chat.HistoryRequestPayload{})

	event := readEvent(t, conn)
	if event.Type != chat.EventChatHistory {
		t.Fatalf("event type: got %q want %q", event.Type, chat.EventChatHistory)
	}

	var history chat.HistoryPayload
	mustUnmarshal(t, event.Payload, &history)
	if history.Error != "" {
		t.Fatalf("unexpected history error: %q", history.Error)
	}
	if len(history.History) != 2 {
		t.Fatalf("history length: got %d want 2", len(history.History))
	}
	if history.History[0].Content != "first" || history.History[1].Content != "second" {
		t.Errorf("history not in creation order: %+v", history.History)
	}
	if history.History[0].Author.Username != alice.Username {
		t.Errorf("history author projection missing: %+v", history.History[0].Author)
	}
}

func TestWebSocket_DeleteAuthorization(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	alice := env.seedUser(t, "alice chan", "alice@example.com", "secret123", user.RoleUser)
	mallory := env.seedUser(t, "mallory kun", "mallory@example.com", "secret123", user.RoleUser)
	mod := env.seedUser(t, "the moderator", "mod@example.com", "secret123", user.RoleModerator)

	aliceConn := dialAndExpectProfile(t, env, alice)
	malloryConn := dialAndExpectProfile(t, env, mallory)
	modConn := dialAndExpectProfile(t, env, mod)

	writeEvent(t, aliceConn, chat.EventSendMessage, chat.SendMessagePayload{Content: "target"})

	var msg chat.Message
	for _, conn := range []*websocket.Conn{aliceConn, malloryConn, modConn} {
		event := readEvent(t, conn)
		mustUnmarshal(t, event.Payload, &msg)
	}

	// A stranger is refused and only they see the error.
	writeEvent(t, malloryConn, chat.EventDeleteMessage, chat.DeleteMessagePayload{MessageID: msg.ID})
	event := readEvent(t, malloryConn)
	if event.Type != chat.EventError {
		t.Fatalf("event type: got %q want %q", event.Type, chat.EventError)
	}
	var wsErr chat.ErrorPayload
	mustUnmarshal(t, event.Payload, &wsErr)
	if wsErr.Type != "permission_denied" {
		t.Errorf("error type: got %q want %q", wsErr.Type, "permission_denied")
	}
	if got := historyLen(t, malloryConn); got != 1 {
		t.Fatalf("message count after denied delete: got %d want 1", got)
	}

	// The moderator succeeds and everyone hears about it.
	writeEvent(t, modConn, chat.EventDeleteMessage, chat.DeleteMessagePayload{MessageID: msg.ID})
	for name, conn := range map[string]*websocket.Conn{"owner": aliceConn, "stranger": malloryConn, "moderator": modConn} {
		event := readEvent(t, conn)
		if event.Type != chat.EventMessageDeleted {
			t.Fatalf("%s: event type got %q want %q", name, event.Type, chat.EventMessageDeleted)
		}
		var deleted chat.MessageDeletedPayload
		mustUnmarshal(t, event.Payload, &deleted)
		if deleted.MessageID != msg.ID {
			t.Errorf("%s: deleted id got %d want %d", name, deleted.MessageID, msg.ID)
		}
	}

	if got := historyLen(t, aliceConn); got != 0 {
		t.Errorf("message count after delete: got %d want 0", got)
	}
}

// historyLen requests chat history on conn and returns the message count.
func historyLen(t *testing.T, conn *websocket.Conn) int {
	t.Helper()

	writeEvent(t, conn, chat.EventRequestHistory, chat.HistoryRequestPayload{})
	event := readEvent(t, conn)
	if event.Type != chat.EventChatHistory {
		t.Fatalf("event type: got %q want %q", event.Type, chat.EventChatHistory)
	}
	var history chat.HistoryPayload
	mustUnmarshal(t, event.Payload, &history)
	if history.Error != "" {
		t.Fatalf("unexpected history error: %q", history.Error)
	}
	return len(history.History)
}

func TestWebSocket_DeleteErrors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	alice := env.seedUser(t, "alice chan", "alice@example.com", "secret123", user.RoleUser)
	conn := dialAndExpectProfile(t, env, alice)

	writeEvent(t, conn, chat.EventDeleteMessage, chat.DeleteMessagePayload{MessageID: 0})
	event := readEvent(t, conn)
	var wsErr chat.ErrorPayload
	mustUnmarshal(t, event.Payload, &wsErr)
	if wsErr.Type != "invalid_request" {
		t.Errorf("zero id: error type got %q want %q", wsErr.Type, "invalid_request")
	}

	writeEvent(t, conn, chat.EventDeleteMessage, chat.DeleteMessagePayload{MessageID: 12345})
	event = readEvent(t, conn)
	mustUnmarshal(t, event.Payload, &wsErr)
	if wsErr.Type != "not_found" {
		t.Errorf("missing message: error type got %q want %q", wsErr.Type, "not_found")
	}
}

func TestWebSocket_OversizedMessageRejected(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	alice := env.seedUser(t, "alice chan", "alice@example.com", "secret123", user.RoleUser)
	conn := dialAndExpectProfile(t, env, alice)

	writeEvent(t, conn, chat.EventSendMessage, chat.SendMessagePayload{
		Content: strings.Repeat("a", chat.MaxContentBytes+1),
	})

	event := readEvent(t, conn)
	if event.Type != chat.EventError {
		t.Fatalf("event type: got %q want %q", event.Type, chat.EventError)
	}
	var wsErr chat.ErrorPayload
	mustUnmarshal(t, event.Payload, &wsErr)
	if wsErr.Type != "message_too_long" {
		t.Errorf("error type: got %q want %q", wsErr.Type, "message_too_long")
	}
}
