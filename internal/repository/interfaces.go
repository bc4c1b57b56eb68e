package repository

import (
	"context"

	"github.com/google/uuid"

	"assistant-chat/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

type ConversationRepository interface {
	Create(ctx context.Context, c *domain.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Conversation, error)
	GetByOwner(ctx context.Context, ownerID int64) ([]domain.Conversation, error)

	// Delete removes the conversation row; dependent messages go with it
	// through the ON DELETE CASCADE constraint. Deleting a missing id
	// reports zero rows deleted, not an error.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type MessageRepository interface {
	// Append inserts the message and moves the owning conversation's
	// updated_at forward to the message created_at, atomically.
	Append(ctx context.Context, m *domain.Message) error
	GetByConversation(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error)
}
