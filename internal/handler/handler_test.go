package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-chat/config"
	"assistant-chat/internal/domain"
	"assistant-chat/internal/llm"
	"assistant-chat/internal/middleware"
	"assistant-chat/internal/services"
	assistant_errors "assistant-chat/pkg/errors"
)

// In-memory doubles for the repository and provider collaborators.

type memStore struct {
	mu            sync.Mutex
	now           time.Time
	nextMessageID int64
	conversations map[uuid.UUID]domain.Conversation
	messages      map[uuid.UUID][]domain.Message
}

func newMemStore() *memStore {
	return &memStore{
		now:           time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		nextMessageID: 1,
		conversations: make(map[uuid.UUID]domain.Conversation),
		messages:      make(map[uuid.UUID][]domain.Message),
	}
}

func (s *memStore) tick() time.Time {
	s.now = s.now.Add(time.Millisecond)
	return s.now
}

func (s *memStore) Create(ctx context.Context, c *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := s.tick()
	c.CreatedAt, c.UpdatedAt = now, now
	s.conversations[c.ID] = *c
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return domain.Conversation{}, assistant_errors.ErrNotFound
	}
	return c, nil
}

func (s *memStore) GetByOwner(ctx context.Context, ownerID int64) ([]domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Conversation, 0)
	for _, c := range s.conversations {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *memStore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		return 0, nil
	}
	delete(s.conversations, id)
	delete(s.messages, id)
	return 1, nil
}

func (s *memStore) Append(ctx context.Context, m *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[m.ConversationID]
	if !ok {
		return assistant_errors.ErrNotFound
	}
	m.ID = s.nextMessageID
	s.nextMessageID++
	m.CreatedAt = s.tick()
	s.messages[m.ConversationID] = append(s.messages[m.ConversationID], *m)
	conv.UpdatedAt = m.CreatedAt
	s.conversations[m.ConversationID] = conv
	return nil
}

func (s *memStore) GetByConversation(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[conversationID]
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int64]domain.User)}
}

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return assistant_errors.ErrAlreadyExists
		}
	}
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, assistant_errors.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, assistant_errors.ErrNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, assistant_errors.ErrNotFound
}

type memProvider struct {
	chunks []string
}

func (p *memProvider) Complete(ctx context.Context, turns []llm.Turn) (string, error) {
	return strings.Join(p.chunks, ""), nil
}

func (p *memProvider) Stream(ctx context.Context, turns []llm.Turn, emit func(chunk string) error) error {
	for _, c := range p.chunks {
		if err := emit(c); err != nil {
			return err
		}
	}
	return nil
}

type testEnv struct {
	router *gin.Engine
	users  *services.UserService
	store  *services.ConversationService
}

func newTestEnv(t *testing.T, chunks ...string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiryMin: 15}
	userService := services.NewUserService(newMemUserRepo(), cfg)
	mem := newMemStore()
	conversationService := services.NewConversationService(mem, mem, nil, nil)
	chatService := services.NewChatService(&memProvider{chunks: chunks}, conversationService)

	userHandler := NewUserHandler(userService)
	conversationHandler := NewConversationHandler(conversationService)
	chatHandler := NewChatHandler(chatService, nil)

	router := gin.New()
	api := router.Group("/api")
	usersGroup := api.Group("/users")
	usersGroup.POST("/register", userHandler.Register)
	usersGroup.POST("/login", userHandler.Login)
	usersGroup.GET("/:userId/conversations", conversationHandler.List)
	usersGroup.POST("/:userId/conversations", conversationHandler.Create)
	usersGroup.DELETE("/conversations/:conversationId", conversationHandler.Delete)
	usersGroup.GET("/conversations/:conversationId/messages", conversationHandler.ListMessages)
	usersGroup.POST("/conversations/:conversationId/messages", conversationHandler.SaveMessage)
	chat := api.Group("/chat")
	chat.GET("/message", chatHandler.Message)
	chat.POST("/streaming", chatHandler.Streaming)
	chat.POST("/conversations/:conversationId/streaming",
		middleware.AuthMiddleware(userService), chatHandler.StreamReply)

	return &testEnv{router: router, users: userService, store: conversationService}
}

func (e *testEnv) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reqBody = strings.NewReader(b)
	default:
		data, _ := json.Marshal(b)
		reqBody = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if _, ok := body.(string); body != nil && !ok {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestRegisterAndLoginEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/api/users/register",
		map[string]string{"username": "alice", "password": "secret1", "email": "alice@example.com"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeEnvelope(t, rr)
	assert.Equal(t, true, body["success"])

	rr = env.do(http.MethodPost, "/api/users/register",
		map[string]string{"username": "alice", "password": "secret1", "email": "dup@example.com"}, nil)
	require.Equal(t, http.StatusConflict, rr.Code)
	body = decodeEnvelope(t, rr)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])

	rr = env.do(http.MethodPost, "/api/users/login",
		map[string]string{"username": "alice", "password": "wrong"}, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	body = decodeEnvelope(t, rr)
	assert.Equal(t, false, body["success"])
}

func TestConversationLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/api/users/1/conversations", map[string]string{"title": "my chat"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	created := decodeEnvelope(t, rr)
	convID := created["data"].(map[string]any)["id"].(string)

	rr = env.do(http.MethodGet, "/api/users/1/conversations", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	listing := decodeEnvelope(t, rr)
	conversations := listing["data"].(map[string]any)["conversations"].([]any)
	require.Len(t, conversations, 1)

	// Unknown discriminator is rejected and stores nothing.
	rr = env.do(http.MethodPost, fmt.Sprintf("/api/users/conversations/%s/messages", convID),
		map[string]any{"userId": 1, "content": "beep", "senderType": "robot"}, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	for _, m := range []map[string]any{
		{"userId": 1, "content": "Hello", "senderType": "user"},
		{"userId": 0, "content": "Hi there", "senderType": "assistant"},
	} {
		rr = env.do(http.MethodPost, fmt.Sprintf("/api/users/conversations/%s/messages", convID), m, nil)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr = env.do(http.MethodGet, fmt.Sprintf("/api/users/conversations/%s/messages", convID), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	messages := decodeEnvelope(t, rr)["data"].(map[string]any)["messages"].([]any)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	second := messages[1].(map[string]any)
	assert.Equal(t, "Hello", first["content"])
	assert.Equal(t, "user", first["sender_type"])
	assert.Equal(t, "Hi there", second["content"])
	assert.Equal(t, "assistant", second["sender_type"])

	// Delete twice; both calls succeed.
	rr = env.do(http.MethodDelete, fmt.Sprintf("/api/users/conversations/%s", convID), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(http.MethodDelete, fmt.Sprintf("/api/users/conversations/%s", convID), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// Cascade: listing messages of the deleted conversation yields an empty
	// list, not an error.
	rr = env.do(http.MethodGet, fmt.Sprintf("/api/users/conversations/%s/messages", convID), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	messages = decodeEnvelope(t, rr)["data"].(map[string]any)["messages"].([]any)
	assert.Empty(t, messages)
}

func TestSaveMessageToMissingConversation(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, fmt.Sprintf("/api/users/conversations/%s/messages", uuid.New()),
		map[string]any{"userId": 1, "content": "hi", "senderType": "user"}, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	body := decodeEnvelope(t, rr)
	assert.Equal(t, false, body["success"])
}

func TestStreamingEndpointRelaysChunks(t *testing.T) {
	env := newTestEnv(t, "Hel", "lo ", "world")

	rr := env.do(http.MethodPost, "/api/chat/streaming", "hi there", map[string]string{"Content-Type": "text/plain"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Hello world", rr.Body.String())
}

func TestStreamReplyEndpoint(t *testing.T) {
	env := newTestEnv(t, "Hi ", "there")
	ctx := context.Background()

	res, err := env.users.Register(ctx, services.RegisterInput{
		Username: "carol", Password: "secret1", Email: "carol@example.com",
	})
	require.NoError(t, err)

	conv, err := env.store.Create(ctx, res.User.ID, "chat")
	require.NoError(t, err)

	path := fmt.Sprintf("/api/chat/conversations/%s/streaming", conv.ID)

	// No token: rejected before any streaming starts.
	rr := env.do(http.MethodPost, path, "Hello", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(http.MethodPost, path, "Hello", map[string]string{
		"Authorization": "Bearer " + res.AccessToken,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Hi there", rr.Body.String())

	msgs, err := env.store.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.SenderUser, msgs[0].SenderType)
	assert.Equal(t, domain.SenderAssistant, msgs[1].SenderType)
	assert.Equal(t, "Hi there", msgs[1].Content)
}
