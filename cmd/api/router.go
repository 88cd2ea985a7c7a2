package api

import (
	"net/http"

	"ptchat-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	// Dispatch endpoints keep their historical top-level paths; they are
	// called by the chat views and by infrastructure, not behind user auth.
	r.POST("/save-subscription", h.notificationHandler.SaveSubscription)
	r.POST("/send-push", h.notificationHandler.SendPush)
	r.POST("/send-email", h.notificationHandler.SendEmail)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Browser push bootstrap (no auth required)
		api.GET("/push/config", h.notificationHandler.PushConfig)

		// Profile routes (protected)
		profiles := api.Group("/profiles")
		profiles.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			profiles.GET("/me", h.profileHandler.Me)
			profiles.GET("/peers", h.profileHandler.Peers)
		}

		// Chat routes (protected)
		chats := api.Group("/chats")
		chats.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			chats.POST("", h.chatHandler.EnsureChat)
			chats.GET("/stream", h.chatHandler.Stream)
			chats.GET("/:id/messages", h.chatHandler.ListMessages)
			chats.POST("/:id/messages", h.chatHandler.SendMessage)
		}
	}
}
