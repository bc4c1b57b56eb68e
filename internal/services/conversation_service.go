package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"assistant-chat/internal/domain"
	"assistant-chat/internal/redis"
	"assistant-chat/internal/repository"
	assistant_errors "assistant-chat/pkg/errors"
	"assistant-chat/pkg/logger"
)

// ConversationService owns persistence and ordered retrieval of conversations
// and their messages. It is safe for concurrent use; the database is the only
// shared state.
type ConversationService struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	cache    *redis.CacheStore
	log      *logger.Logger
}

func NewConversationService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	cache *redis.CacheStore,
	log *logger.Logger,
) *ConversationService {
	return &ConversationService{convRepo: convRepo, msgRepo: msgRepo, cache: cache, log: log}
}

// Create starts a new conversation for ownerID. The title may be empty.
func (s *ConversationService) Create(ctx context.Context, ownerID int64, title string) (domain.Conversation, error) {
	conv := domain.Conversation{
		OwnerID: ownerID,
		Title:   title,
	}
	if err := s.convRepo.Create(ctx, &conv); err != nil {
		return domain.Conversation{}, err
	}
	s.invalidateListing(ctx, ownerID)
	return conv, nil
}

// ListByOwner returns the owner's conversations, most recently active first.
// An unknown owner yields an empty list.
func (s *ConversationService) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Conversation, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetConversations(ctx, ownerID); ok {
			return cached, nil
		}
	}
	conversations, err := s.convRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetConversations(ctx, ownerID, conversations)
	}
	return conversations, nil
}

// GetByID returns a single conversation or ErrNotFound.
func (s *ConversationService) GetByID(ctx context.Context, id uuid.UUID) (domain.Conversation, error) {
	return s.convRepo.GetByID(ctx, id)
}

// Delete removes the conversation and, via cascade, all of its messages.
// Deleting a missing id is a no-op success so retries stay harmless.
func (s *ConversationService) Delete(ctx context.Context, id uuid.UUID) error {
	conv, err := s.convRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, assistant_errors.ErrNotFound) {
			return nil
		}
		return err
	}

	if _, err := s.convRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateListing(ctx, conv.OwnerID)
	return nil
}

// AppendMessage validates the sender discriminator, persists the message and
// bumps the conversation's updated_at in the same transaction.
func (s *ConversationService) AppendMessage(ctx context.Context, conversationID uuid.UUID, senderID int64, content string, senderType domain.SenderType) (domain.Message, error) {
	if !senderType.Valid() {
		return domain.Message{}, assistant_errors.ErrInvalidInput
	}

	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderType:     senderType,
		Content:        content,
	}
	if err := s.msgRepo.Append(ctx, &msg); err != nil {
		return domain.Message{}, err
	}
	s.invalidateListing(ctx, conv.OwnerID)
	return msg, nil
}

// ListMessages returns the conversation's messages oldest first so the slice
// can be replayed directly as prompt history. A deleted or unknown
// conversation yields an empty list.
func (s *ConversationService) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	return s.msgRepo.GetByConversation(ctx, conversationID)
}

func (s *ConversationService) invalidateListing(ctx context.Context, ownerID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateConversations(ctx, ownerID); err != nil && s.log != nil {
		s.log.Errorf("failed to invalidate conversation cache for owner %d: %s", ownerID, err)
	}
}
