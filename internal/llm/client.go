package llm

import (
	"context"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"assistant-chat/config"
	"assistant-chat/pkg/logger"
)

// Turn is one prior exchange replayed into the model prompt.
type Turn struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client wraps the OpenAI-compatible chat-completion provider. Every request,
// response and error is logged for observability.
type Client struct {
	llm *openai.LLM
	log *logger.Logger
}

func New(cfg *config.Config, log *logger.Logger) (*Client, error) {
	llm, err := openai.New(
		openai.WithToken(cfg.LLMAPIKey),
		openai.WithBaseURL(cfg.LLMBaseURL),
		openai.WithModel(cfg.LLMModel),
	)
	if err != nil {
		return nil, err
	}
	return &Client{llm: llm, log: log}, nil
}

// Complete sends the turns and returns the full assistant reply.
func (c *Client) Complete(ctx context.Context, turns []Turn) (string, error) {
	c.logRequest(turns)
	resp, err := c.llm.GenerateContent(ctx, toMessageContent(turns))
	if err != nil {
		c.logError(err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	answer := resp.Choices[0].Content
	c.logResponse(answer)
	return answer, nil
}

// Stream sends the turns and forwards each incremental fragment to emit in
// arrival order. Emit returning an error aborts the stream.
func (c *Client) Stream(ctx context.Context, turns []Turn, emit func(chunk string) error) error {
	c.logRequest(turns)
	var full string
	_, err := c.llm.GenerateContent(ctx, toMessageContent(turns),
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			full += string(chunk)
			return emit(string(chunk))
		}),
	)
	if err != nil {
		c.logError(err)
		return err
	}
	c.logResponse(full)
	return nil
}

func toMessageContent(turns []Turn) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(turns))
	for _, t := range turns {
		var role llms.ChatMessageType
		switch t.Role {
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		messages = append(messages, llms.TextParts(role, t.Content))
	}
	return messages
}

func (c *Client) logRequest(turns []Turn) {
	if c.log != nil {
		c.log.Infof("chat model request: %d turns", len(turns))
	}
}

func (c *Client) logResponse(answer string) {
	if c.log != nil {
		c.log.Infof("chat model response: %d chars", len(answer))
	}
}

func (c *Client) logError(err error) {
	if c.log != nil {
		c.log.Errorf("chat model error: %s", err)
	}
}
