package domain

import (
	"time"

	"github.com/google/uuid"
)

// SenderType discriminates who produced a message. It decides the role a
// stored message is replayed with when history is fed back to the model.
type SenderType string

const (
	SenderUser      SenderType = "user"
	SenderAssistant SenderType = "assistant"
)

// Valid reports whether t is one of the recognized discriminators.
func (t SenderType) Valid() bool {
	return t == SenderUser || t == SenderAssistant
}

// Message represents the messages table. Messages are immutable once written;
// the serial ID breaks created_at ties so replay order stays deterministic.
type Message struct {
	ID             int64
	ConversationID uuid.UUID
	SenderID       int64
	SenderType     SenderType
	Content        string
	CreatedAt      time.Time
}
