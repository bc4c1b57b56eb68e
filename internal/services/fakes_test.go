package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"assistant-chat/internal/domain"
	assistant_errors "assistant-chat/pkg/errors"
)

// fakeStore backs both repository interfaces with in-memory maps. It advances
// a fake clock on every write so timestamp ordering is deterministic even on
// coarse clocks.
type fakeStore struct {
	mu            sync.Mutex
	now           time.Time
	nextMessageID int64
	conversations map[uuid.UUID]domain.Conversation
	messages      map[uuid.UUID][]domain.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		now:           time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		nextMessageID: 1,
		conversations: make(map[uuid.UUID]domain.Conversation),
		messages:      make(map[uuid.UUID][]domain.Message),
	}
}

func (f *fakeStore) tick() time.Time {
	f.now = f.now.Add(time.Millisecond)
	return f.now
}

func (f *fakeStore) Create(ctx context.Context, c *domain.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := f.tick()
	c.CreatedAt = now
	c.UpdatedAt = now
	f.conversations[c.ID] = *c
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.conversations[id]
	if !ok {
		return domain.Conversation{}, assistant_errors.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) GetByOwner(ctx context.Context, ownerID int64) ([]domain.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Conversation, 0)
	for _, c := range f.conversations {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.conversations[id]; !ok {
		return 0, nil
	}
	delete(f.conversations, id)
	delete(f.messages, id)
	return 1, nil
}

func (f *fakeStore) Append(ctx context.Context, m *domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[m.ConversationID]
	if !ok {
		return assistant_errors.ErrNotFound
	}
	m.ID = f.nextMessageID
	f.nextMessageID++
	m.CreatedAt = f.tick()
	f.messages[m.ConversationID] = append(f.messages[m.ConversationID], *m)
	conv.UpdatedAt = m.CreatedAt
	f.conversations[m.ConversationID] = conv
	return nil
}

func (f *fakeStore) GetByConversation(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[conversationID]
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func newTestConversationService() (*ConversationService, *fakeStore) {
	store := newFakeStore()
	return NewConversationService(store, store, nil, nil), store
}
