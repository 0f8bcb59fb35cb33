package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mikuchat/internal/app/chat"
	"mikuchat/internal/app/sanitize"
	"mikuchat/internal/app/user"
	"mikuchat/internal/configs"
	"mikuchat/internal/pkg/resp"
)

// fakeUserStore is an in-memory user.Store.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*user.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*user.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return user.ErrDuplicateUsername
		}
		if existing.Email == u.Email {
			return user.ErrDuplicateEmail
		}
		if u.GoogleID != "" && existing.GoogleID == u.GoogleID {
			return user.ErrDuplicateGoogleID
		}
	}

	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = time.Now().UTC()
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id int64) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, user.ErrNotFound
}

func (s *fakeUserStore) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *fakeUserStore) GetByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == identifier || u.Email == identifier {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *fakeUserStore) GetByGoogleID(ctx context.Context, googleID string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.GoogleID != "" && u.GoogleID == googleID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *fakeUserStore) Update(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	for id, existing := range s.users {
		if id != u.ID && existing.Username == u.Username {
			return user.ErrDuplicateUsername
		}
	}
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

// fakeMessageStore is an in-memory chat.MessageStore.
type fakeMessageStore struct {
	mu     sync.Mutex
	nextID int64
	rows   []storedMessage
	users  *fakeUserStore
}

type storedMessage struct {
	id       int64
	authorID int64
	channel  string
	content  string
	created  time.Time
}

func newFakeMessageStore(users *fakeUserStore) *fakeMessageStore {
	return &fakeMessageStore{users: users}
}

func (s *fakeMessageStore) Insert(ctx context.Context, authorID int64, channel, content string) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	row := storedMessage{id: s.nextID, authorID: authorID, channel: channel, content: content, created: time.Now().UTC()}
	s.rows = append(s.rows, row)
	return row.id, row.created, nil
}

func (s *fakeMessageStore) History(ctx context.Context, channel string, limit int) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []chat.Message
	for _, row := range s.rows {
		if row.channel != channel {
			continue
		}
		msg := chat.Message{
			ID:        row.id,
			Content:   row.content,
			Channel:   row.channel,
			CreatedAt: row.created,
			Author:    chat.AuthorRef{ID: row.authorID},
		}
		if u, err := s.users.GetByID(ctx, row.authorID); err == nil {
			msg.Author.Username = u.Username
			msg.Author.AvatarURL = u.AvatarURL
		}
		out = append(out, msg)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *fakeMessageStore) AuthorID(ctx context.Context, messageID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.id == messageID {
			return row.authorID, nil
		}
	}
	return 0, chat.ErrMessageNotFound
}

func (s *fakeMessageStore) Delete(ctx context.Context, messageID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, row := range s.rows {
		if row.id == messageID {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// testEnv wires a full router around in-memory stores.
type testEnv struct {
	deps     *AppDeps
	users    *fakeUserStore
	messages *fakeMessageStore
	server   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newFakeUserStore()
	messages := newFakeMessageStore(users)
	sanitizer := sanitize.NewHTML()
	hub := chat.NewHub()
	t.Cleanup(hub.Shutdown)

	deps := &AppDeps{
		Config: &configs.AppConfig{
			Environment: "development",
			Port:        8080,
			JWTSecret:   "test-secret",
			StaticDir:   t.TempDir(),
		},
		Hub:       hub,
		Gateway:   chat.NewGateway(messages, sanitizer),
		Users:     users,
		Sanitizer: sanitizer,
	}

	server := httptest.NewServer(Router(deps))
	t.Cleanup(server.Close)

	return &testEnv{deps: deps, users: users, messages: messages, server: server}
}

// seedUser registers a user directly in the store and returns it.
func (env *testEnv) seedUser(t *testing.T, username, email, password string, role user.Role) *user.User {
	t.Helper()

	u := &user.User{
		Username:  username,
		Email:     email,
		AvatarURL: user.DefaultAvatarURL(username),
		Role:      role,
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		u.PasswordHash = string(hash)
	}
	if err := env.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (env *testEnv) postJSON(t *testing.T, path string, body any, token string) *http.Response {
	t.Helper()
	return env.doJSON(t, http.MethodPost, path, body, token)
}

func (env *testEnv) doJSON(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req, err := http.NewRequest(method, env.server.URL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := env.server.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return res
}

// decodeEnvelope parses the standard response envelope, returning the data
// object re-marshaled for the caller to decode into a concrete type.
func decodeEnvelope(t *testing.T, res *http.Response) (resp.JSONResponse, json.RawMessage) {
	t.Helper()
	defer res.Body.Close()

	var envelope struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response envelope: %v", err)
	}
	return resp.JSONResponse{Code: envelope.Code, Message: envelope.Message}, envelope.Data
}
