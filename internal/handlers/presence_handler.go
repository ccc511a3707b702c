package handlers

import (
	"errors"
	"net/http"
	"strings"

	"content-realtime-api/internal/database"
	"content-realtime-api/internal/realtime"
	"content-realtime-api/pkg/events"

	"github.com/gin-gonic/gin"
)

// UpdateStatusRequest represents a user's published status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,max=32"`
}

// UpdateStatus handles PUT /api/users/me/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. status is required."})
		return
	}
	status := strings.TrimSpace(req.Status)

	if err := h.store.SetUserStatus(c.Request.Context(), userID, status); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to set status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	h.hub.Dispatcher.UserStatusChanged(events.UserStatus{UserID: userID, Status: status})
	c.JSON(http.StatusOK, events.UserStatus{UserID: userID, Status: status})
}

// GetStatus handles GET /api/users/:id/status
// A user with a live connection and no stored status reports "online".
func (h *Handler) GetStatus(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	target := c.Param("id")
	_, online := h.hub.Registry.Resolve(target)

	status, err := h.store.UserStatus(c.Request.Context(), target)
	switch {
	case errors.Is(err, database.ErrNotFound):
		status = realtime.StatusOffline
		if online {
			status = realtime.StatusOnline
		}
	case err != nil:
		h.log.Error().Err(err).Str("target", target).Msg("failed to load status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId": target,
		"status": status,
		"online": online,
	})
}
