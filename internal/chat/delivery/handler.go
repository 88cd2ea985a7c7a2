package delivery

import (
	"errors"
	"net/http"

	"ptchat-backend/internal/chat/session"
	"ptchat-backend/internal/chat/usecase"
	"ptchat-backend/internal/realtime"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatUsecase   usecase.ChatUsecase
	hub           *realtime.Hub
	dispatcher    session.Dispatcher
	allowedOrigin string
}

func NewChatHandler(chatUsecase usecase.ChatUsecase, hub *realtime.Hub, dispatcher session.Dispatcher, allowedOrigin string) *ChatHandler {
	return &ChatHandler{
		chatUsecase:   chatUsecase,
		hub:           hub,
		dispatcher:    dispatcher,
		allowedOrigin: allowedOrigin,
	}
}

type ensureChatRequest struct {
	TargetUserID string `json:"targetUserId"`
}

// EnsureChat resolves or lazily creates the chat between the caller and the
// target user.
func (h *ChatHandler) EnsureChat(c *gin.Context) {
	userID := c.GetString("userID")

	var req ensureChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TargetUserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing targetUserId"})
		return
	}

	chat, err := h.chatUsecase.EnsureChat(userID, req.TargetUserID)
	if err != nil {
		status, msg := ensureChatError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, chat)
}

func ensureChatError(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrProfileNotFound):
		return http.StatusNotFound, usecase.ErrProfileNotFound.Error()
	case errors.Is(err, usecase.ErrInvalidPair):
		return http.StatusBadRequest, usecase.ErrInvalidPair.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID := c.GetString("userID")
	chatID := c.Param("id")

	chat, err := h.chatUsecase.GetChat(chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if chat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
		return
	}
	if !chat.Participant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this chat"})
		return
	}

	messages, err := h.chatUsecase.ListMessages(chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.GetString("userID")
	chatID := c.Param("id")

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	message, err := h.chatUsecase.SendMessage(chatID, userID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": usecase.ErrEmptyMessage.Error()})
		case errors.Is(err, usecase.ErrChatNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": usecase.ErrChatNotFound.Error()})
		case errors.Is(err, usecase.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": usecase.ErrNotParticipant.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, message)
}
