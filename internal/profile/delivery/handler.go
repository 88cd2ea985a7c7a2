package delivery

import (
	"errors"
	"net/http"

	"ptchat-backend/internal/profile/usecase"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	dashboardUsecase usecase.DashboardUsecase
}

func NewProfileHandler(dashboardUsecase usecase.DashboardUsecase) *ProfileHandler {
	return &ProfileHandler{
		dashboardUsecase: dashboardUsecase,
	}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	userID := c.GetString("userID")

	profile, err := h.dashboardUsecase.GetProfile(userID)
	if err != nil {
		if errors.Is(err, usecase.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) Peers(c *gin.Context) {
	userID := c.GetString("userID")

	profile, peers, err := h.dashboardUsecase.GetPeers(userID)
	if err != nil {
		if errors.Is(err, usecase.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role":  profile.Role,
		"peers": peers,
	})
}
