package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation represents the conversations table. A conversation belongs to
// exactly one owner and may hold zero messages. UpdatedAt moves forward every
// time a message is appended, which drives the recency ordering of listings.
type Conversation struct {
	ID        uuid.UUID
	OwnerID   int64
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
