package services

import (
	"context"

	"github.com/google/uuid"

	"assistant-chat/internal/domain"
	"assistant-chat/internal/llm"
)

const systemPrompt = "You are a polite assistant"

// AssistantSenderID is the synthetic sender recorded on messages the model
// produced; it never references a real user row.
const AssistantSenderID int64 = 0

// Provider is the chat-completion collaborator.
type Provider interface {
	Complete(ctx context.Context, turns []llm.Turn) (string, error)
	Stream(ctx context.Context, turns []llm.Turn, emit func(chunk string) error) error
}

// ChatService relays prompts to the provider. The stateless Message and
// StreamMessage calls mirror the bare pass-through endpoints; StreamReply
// additionally replays stored history and persists both sides of the
// exchange.
type ChatService struct {
	provider Provider
	store    *ConversationService
}

func NewChatService(provider Provider, store *ConversationService) *ChatService {
	return &ChatService{provider: provider, store: store}
}

// Message returns a complete reply for a single prompt, without history.
func (s *ChatService) Message(ctx context.Context, msg string) (string, error) {
	return s.provider.Complete(ctx, promptTurns(nil, msg))
}

// StreamMessage relays provider fragments for a single prompt to emit.
func (s *ChatService) StreamMessage(ctx context.Context, msg string, emit func(chunk string) error) error {
	return s.provider.Stream(ctx, promptTurns(nil, msg), emit)
}

// StreamReply appends the user's message to the conversation, streams the
// assistant reply built from the full stored history, and persists the
// accumulated reply once the stream completes.
func (s *ChatService) StreamReply(ctx context.Context, conversationID uuid.UUID, senderID int64, content string, emit func(chunk string) error) error {
	history, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return err
	}
	if _, err := s.store.AppendMessage(ctx, conversationID, senderID, content, domain.SenderUser); err != nil {
		return err
	}

	var reply string
	err = s.provider.Stream(ctx, promptTurns(history, content), func(chunk string) error {
		reply += chunk
		return emit(chunk)
	})
	if err != nil {
		return err
	}

	_, err = s.store.AppendMessage(ctx, conversationID, AssistantSenderID, reply, domain.SenderAssistant)
	return err
}

// promptTurns builds the provider prompt: system instruction, replayed
// history in stored order, then the new user message.
func promptTurns(history []domain.Message, msg string) []llm.Turn {
	turns := make([]llm.Turn, 0, len(history)+2)
	turns = append(turns, llm.Turn{Role: llm.RoleSystem, Content: systemPrompt})
	for _, m := range history {
		role := llm.RoleUser
		if m.SenderType == domain.SenderAssistant {
			role = llm.RoleAssistant
		}
		turns = append(turns, llm.Turn{Role: role, Content: m.Content})
	}
	turns = append(turns, llm.Turn{Role: llm.RoleUser, Content: msg})
	return turns
}
