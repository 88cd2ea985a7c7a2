package delivery

import (
	"errors"
	"net/http"

	"ptchat-backend/internal/notification"
	"ptchat-backend/pkg/mail"

	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the three dispatch endpoints: save a device
// subscription, send a push, and send the fallback email. All are stateless;
// validation failures map to 400, a missing recipient subscription to 404,
// and provider failures to 500 with the raw error message.
type NotificationHandler struct {
	service *notification.Service
	vapid   string
}

func NewNotificationHandler(service *notification.Service, vapidPublicKey string) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		vapid:   vapidPublicKey,
	}
}

type saveSubscriptionRequest struct {
	UserID   string `json:"userId"`
	FCMToken string `json:"fcmToken"`
	Endpoint string `json:"endpoint"`
}

func (h *NotificationHandler) SaveSubscription(c *gin.Context) {
	var req saveSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.UserID == "" || req.FCMToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing userId or fcmToken"})
		return
	}

	if err := h.service.SaveSubscription(req.UserID, req.FCMToken, req.Endpoint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type sendPushRequest struct {
	RecipientID string `json:"recipientId"`
	SenderName  string `json:"senderName"`
	Message     string `json:"message"`
	ChatID      string `json:"chatId"`
}

func (h *NotificationHandler) SendPush(c *gin.Context) {
	var req sendPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.RecipientID == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing recipientId or message"})
		return
	}

	success, err := h.service.SendPush(c.Request.Context(), req.RecipientID, req.SenderName, req.Message, req.ChatID)
	if err != nil {
		if errors.Is(err, notification.ErrNoSubscription) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no subscription found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": success})
}

type sendEmailRequest struct {
	To            string `json:"to"`
	RecipientName string `json:"recipientName"`
	SenderName    string `json:"senderName"`
	Message       string `json:"message"`
}

func (h *NotificationHandler) SendEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.To == "" || req.SenderName == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	id, err := h.service.SendEmail(c.Request.Context(), mail.NewMessageEmail{
		To:            req.To,
		RecipientName: req.RecipientName,
		SenderName:    req.SenderName,
		Message:       req.Message,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// PushConfig returns the public values the browser needs to register for
// push: the VAPID key and whether the push channel is configured at all.
func (h *NotificationHandler) PushConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"vapidKey": h.vapid,
		"enabled":  h.service.PushEnabled(),
	})
}
