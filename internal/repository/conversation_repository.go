package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"assistant-chat/internal/domain"
	assistant_errors "assistant-chat/pkg/errors"
)

type PostgresConversationRepository struct {
	db DBTX
}

func NewConversationRepository(db DBTX) ConversationRepository {
	return &PostgresConversationRepository{db: db}
}

func (r *PostgresConversationRepository) Create(ctx context.Context, c *domain.Conversation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.Exec(ctx,
		`INSERT INTO conversations (id, owner_id, title, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.OwnerID, c.Title, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return assistant_errors.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return assistant_errors.ErrNotFound
		}
		return storageErr(err)
	}
	return nil
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Conversation, error) {
	var c domain.Conversation
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, title, created_at, updated_at
		 FROM conversations WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.OwnerID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Conversation{}, assistant_errors.ErrNotFound
		}
		return domain.Conversation{}, storageErr(err)
	}
	return c, nil
}

func (r *PostgresConversationRepository) GetByOwner(ctx context.Context, ownerID int64) ([]domain.Conversation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, title, created_at, updated_at
		 FROM conversations
		 WHERE owner_id = $1
		 ORDER BY updated_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	conversations := make([]domain.Conversation, 0)
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, storageErr(err)
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return conversations, nil
}

func (r *PostgresConversationRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return 0, storageErr(err)
	}
	return tag.RowsAffected(), nil
}
