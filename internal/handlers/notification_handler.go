package handlers

import (
	"errors"
	"net/http"

	"content-realtime-api/internal/database"
	"content-realtime-api/internal/models"
	"content-realtime-api/pkg/events"

	"github.com/gin-gonic/gin"
)

// CreateNotificationRequest represents a notification addressed to one user
type CreateNotificationRequest struct {
	UserID string `json:"userId" binding:"required"`
	Kind   string `json:"kind"`
	Title  string `json:"title" binding:"required,max=200"`
	Body   string `json:"body" binding:"max=2000"`
}

// AnnouncementRequest represents a system-wide announcement
type AnnouncementRequest struct {
	Title string `json:"title" binding:"required,max=200"`
	Body  string `json:"body" binding:"required"`
	Level string `json:"level" binding:"omitempty,oneof=info warning critical"`
}

func notificationPayload(n *models.Notification) events.Notification {
	return events.Notification{
		ID:     n.ID,
		UserID: n.UserID,
		Kind:   n.Kind,
		Title:  n.Title,
		Body:   n.Body,
		Read:   n.Read,
	}
}

// CreateNotification handles POST /api/notifications
func (h *Handler) CreateNotification(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. userId and title are required."})
		return
	}

	n := &models.Notification{UserID: req.UserID, Kind: req.Kind, Title: req.Title, Body: req.Body}
	if err := h.store.CreateNotification(c.Request.Context(), n); err != nil {
		h.log.Error().Err(err).Str("target", req.UserID).Msg("failed to create notification")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
		return
	}

	delivered := h.hub.Dispatcher.Notify(notificationPayload(n))
	c.JSON(http.StatusCreated, gin.H{
		"notification": n,
		"delivered":    delivered,
	})
}

// ListNotifications handles GET /api/notifications?unread=true
func (h *Handler) ListNotifications(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.store.ListNotifications(c.Request.Context(), userID, c.Query("unread") == "true")
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to list notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": list,
		"count":         len(list),
	})
}

// MarkNotificationRead handles PATCH /api/notifications/:id/read
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	n, err := h.store.MarkNotificationRead(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to mark notification read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	h.hub.Dispatcher.NotificationRead(userID, n.ID)
	c.JSON(http.StatusOK, n)
}

// Announce handles POST /api/announcements
// Announcements are not persisted; only currently connected clients see them.
func (h *Handler) Announce(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. title and body are required."})
		return
	}

	a := events.AnnouncementBody{ID: newID(), Title: req.Title, Body: req.Body, Level: req.Level}
	delivered := h.hub.Dispatcher.Announce(a)
	h.log.Info().Str("user_id", userID).Str("announcement_id", a.ID).Int("delivered", delivered).Msg("announcement broadcast")
	c.JSON(http.StatusAccepted, gin.H{
		"announcement": a,
		"delivered":    delivered,
	})
}
