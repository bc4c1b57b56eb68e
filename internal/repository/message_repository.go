package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"assistant-chat/internal/domain"
	assistant_errors "assistant-chat/pkg/errors"
)

type PostgresMessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Append(ctx context.Context, m *domain.Message) error {
	return WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO messages (conversation_id, sender_id, sender_type, content)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at`,
			m.ConversationID, m.SenderID, m.SenderType, m.Content,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return assistant_errors.ErrNotFound
			}
			return storageErr(err)
		}

		// Last commit wins on updated_at; no cross-request ordering is
		// promised, only that listings reflect the latest append.
		if _, err := tx.Exec(ctx,
			`UPDATE conversations SET updated_at = $1 WHERE id = $2`,
			m.CreatedAt, m.ConversationID,
		); err != nil {
			return storageErr(err)
		}
		return nil
	})
}

func (r *PostgresMessageRepository) GetByConversation(ctx context.Context, conversationID uuid.UUID) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, conversation_id, sender_id, sender_type, content, created_at
		 FROM messages
		 WHERE conversation_id = $1
		 ORDER BY created_at ASC, id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	messages := make([]domain.Message, 0)
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderType, &m.Content, &m.CreatedAt); err != nil {
			return nil, storageErr(err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}
	return messages, nil
}
