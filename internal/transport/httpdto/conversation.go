package httpdto

import (
	"time"

	"assistant-chat/internal/domain"
)

type CreateConversationRequest struct {
	Title string `json:"title"`
}

type ConversationDTO struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListConversationsResponse struct {
	Conversations []ConversationDTO `json:"conversations"`
}

func FromConversation(c domain.Conversation) ConversationDTO {
	return ConversationDTO{
		ID:        c.ID.String(),
		OwnerID:   c.OwnerID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromConversationSlice(items []domain.Conversation) []ConversationDTO {
	out := make([]ConversationDTO, 0, len(items))
	for _, c := range items {
		out = append(out, FromConversation(c))
	}
	return out
}
