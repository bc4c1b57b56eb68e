package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"assistant-chat/internal/domain"
)

// Cache key patterns:
// - conversations:{owner_id} - short TTL listing cache, invalidated on any
//   write touching the owner's conversations

// CacheConfig contains configuration for caching
type CacheConfig struct {
	ConversationTTL time.Duration
}

// DefaultCacheConfig returns sensible defaults
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ConversationTTL: 5 * time.Minute,
	}
}

// CacheStore handles caching in Redis
type CacheStore struct {
	client *goredis.Client
	config CacheConfig
}

// NewCacheStore creates a new cache store
func NewCacheStore(client *goredis.Client, config CacheConfig) *CacheStore {
	return &CacheStore{
		client: client,
		config: config,
	}
}

// GetConversations retrieves a cached conversation listing. The second
// return value is false on a miss or on any cache error; the caller falls
// back to the database either way.
func (c *CacheStore) GetConversations(ctx context.Context, ownerID int64) ([]domain.Conversation, bool) {
	data, err := c.client.Get(ctx, conversationsKey(ownerID)).Result()
	if err != nil {
		return nil, false
	}
	var conversations []domain.Conversation
	if err := json.Unmarshal([]byte(data), &conversations); err != nil {
		return nil, false
	}
	return conversations, true
}

// SetConversations stores a conversation listing. Failures are ignored; the
// cache is best effort.
func (c *CacheStore) SetConversations(ctx context.Context, ownerID int64, conversations []domain.Conversation) {
	data, err := json.Marshal(conversations)
	if err != nil {
		return
	}
	c.client.Set(ctx, conversationsKey(ownerID), data, c.config.ConversationTTL)
}

// InvalidateConversations drops the owner's cached listing.
func (c *CacheStore) InvalidateConversations(ctx context.Context, ownerID int64) error {
	return c.client.Del(ctx, conversationsKey(ownerID)).Err()
}

func conversationsKey(ownerID int64) string {
	return fmt.Sprintf("conversations:%d", ownerID)
}
