package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"assistant-chat/internal/services"
	"assistant-chat/internal/transport/httpdto"
	"assistant-chat/pkg/logger"
)

type ChatHandler struct {
	service *services.ChatService
	log     *logger.Logger
}

func NewChatHandler(service *services.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{service: service, log: log}
}

// Message answers a single prompt in one response.
func (h *ChatHandler) Message(c *gin.Context) {
	msg := c.Query("msg")
	if msg == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("msg query parameter required", "INVALID_REQUEST"))
		return
	}

	answer, err := h.service.Message(c.Request.Context(), msg)
	if err != nil {
		respondError(c, err)
		return
	}

	c.String(http.StatusOK, answer)
}

// Streaming relays provider fragments as raw chunks on the response body.
// The frontend consumes the body with a streaming reader, so there is no SSE
// framing; each flush carries exactly the text received so far.
func (h *ChatHandler) Streaming(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("request body required", "INVALID_REQUEST"))
		return
	}

	h.relay(c, func(emit func(chunk string) error) error {
		return h.service.StreamMessage(c.Request.Context(), string(body), emit)
	})
}

// StreamReply streams an assistant answer grounded in the conversation's
// stored history, persisting both the user message and the finished reply.
func (h *ChatHandler) StreamReply(c *gin.Context) {
	conversationID, ok := parseConversationID(c)
	if !ok {
		return
	}

	senderID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("request body required", "INVALID_REQUEST"))
		return
	}

	h.relay(c, func(emit func(chunk string) error) error {
		return h.service.StreamReply(c.Request.Context(), conversationID, senderID, string(body), emit)
	})
}

func (h *ChatHandler) relay(c *gin.Context, run func(emit func(chunk string) error) error) {
	wrote := false
	emit := func(chunk string) error {
		if !wrote {
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Status(http.StatusOK)
			wrote = true
		}
		if _, err := c.Writer.WriteString(chunk); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	if err := run(emit); err != nil {
		if !wrote {
			respondError(c, err)
			return
		}
		// Headers are gone; all we can do is log and stop the stream.
		if h.log != nil {
			h.log.Errorf("streaming aborted: %s", err)
		}
	}
}
