package api

import (
	"net/http"

	authUsecase "ptchat-backend/internal/auth/usecase"
	chatDelivery "ptchat-backend/internal/chat/delivery"
	notifDelivery "ptchat-backend/internal/notification/delivery"
	profileDelivery "ptchat-backend/internal/profile/delivery"
	"ptchat-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	config              *config.Config
	authUsecase         authUsecase.AuthUsecase
	chatHandler         *chatDelivery.ChatHandler
	profileHandler      *profileDelivery.ProfileHandler
	notificationHandler *notifDelivery.NotificationHandler
}

func NewHandler(cfg *config.Config, authUc authUsecase.AuthUsecase, chatHandler *chatDelivery.ChatHandler, profileHandler *profileDelivery.ProfileHandler, notificationHandler *notifDelivery.NotificationHandler) *Handler {
	return &Handler{
		config:              cfg,
		authUsecase:         authUc,
		chatHandler:         chatHandler,
		profileHandler:      profileHandler,
		notificationHandler: notificationHandler,
	}
}

// Router builds the gin engine with the CORS middleware and all routes.
// Split from Start so tests can drive it with httptest.
func (h *Handler) Router() *gin.Engine {
	if h.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// CORS: one fixed allowed origin, fixed headers and methods. Preflight
	// answers 200 with an empty body on every route.
	allowedOrigin := h.config.CORSOrigin
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h)
	return r
}

func (h *Handler) Start(addr string) error {
	return h.Router().Run(addr)
}
