package httpdto

import (
	"time"

	"assistant-chat/internal/domain"
)

type SaveMessageRequest struct {
	UserID     int64  `json:"userId"`
	Content    string `json:"content"`
	SenderType string `json:"senderType"`
}

type MessageDTO struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	SenderType     string    `json:"sender_type"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

type ListMessagesResponse struct {
	Messages []MessageDTO `json:"messages"`
}

func FromMessage(m domain.Message) MessageDTO {
	return MessageDTO{
		ID:             m.ID,
		ConversationID: m.ConversationID.String(),
		SenderID:       m.SenderID,
		SenderType:     string(m.SenderType),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

func FromMessageSlice(items []domain.Message) []MessageDTO {
	out := make([]MessageDTO, 0, len(items))
	for _, m := range items {
		out = append(out, FromMessage(m))
	}
	return out
}
