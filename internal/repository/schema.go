package repository

import (
	"context"
	"fmt"
)

// InitSchema creates the tables and indexes. Statements are idempotent so the
// migrate CLI can be re-run safely.
func InitSchema(ctx context.Context, db DBTX) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id         UUID PRIMARY KEY,
			owner_id   BIGINT NOT NULL REFERENCES users(id),
			title      TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id              BIGSERIAL PRIMARY KEY,
			conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			sender_id       BIGINT NOT NULL,
			sender_type     TEXT NOT NULL CHECK (sender_type IN ('user', 'assistant')),
			content         TEXT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_owner_recency
			ON conversations (owner_id, updated_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_order
			ON messages (conversation_id, created_at, id);`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}

// DropSchema removes all tables. Used by the migrate CLI reset command.
func DropSchema(ctx context.Context, db DBTX) error {
	statements := []string{
		`DROP TABLE IF EXISTS messages;`,
		`DROP TABLE IF EXISTS conversations;`,
		`DROP TABLE IF EXISTS users;`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}
