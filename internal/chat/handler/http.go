// Package handler exposes the chat relay over HTTP/JSON.
package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"gemini-chat/backend/internal/chat/domain"
	"gemini-chat/backend/internal/chat/service"
)

// Handler serves POST /api/chat.
type Handler struct {
	relay *service.Relay
}

// NewHandler returns a handler backed by the given relay.
func NewHandler(relay *service.Relay) *Handler {
	return &Handler{relay: relay}
}

// RegisterRoutes mounts the chat route on r. The route group must already
// enforce authentication.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/chat", h.Chat)
}

type chatRequest struct {
	Message string        `json:"message"`
	History []domain.Turn `json:"history"`
}

// Chat relays the message and history and returns the generated answer.
// Empty messages are 400; upstream failures are 500 with the upstream detail.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	answer, err := h.relay.Respond(c.Request.Context(), req.Message, req.History)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		case errors.Is(err, service.ErrUpstream):
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Gemini API error: %v", err)})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "chat failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
