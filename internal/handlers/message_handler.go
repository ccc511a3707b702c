package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"content-realtime-api/internal/models"
	"content-realtime-api/internal/realtime"

	"github.com/gin-gonic/gin"
)

// SendMessageRequest represents the request payload for a private message
type SendMessageRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
	Content     string `json:"content" binding:"required,max=4000"`
}

// SendMessage handles POST /api/messages
// Persists the message, then confirms to the sender and delivers to the recipient.
func (h *Handler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. recipientId and content are required.",
		})
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content cannot be empty"})
		return
	}

	msg := &models.Message{SenderID: userID, RecipientID: req.RecipientID, Content: content}
	if err := h.store.SaveMessage(c.Request.Context(), msg); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to save message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	delivered := h.hub.Dispatcher.MessageDelivered(realtime.MessagePayload(msg))
	c.JSON(http.StatusCreated, gin.H{
		"message":   msg,
		"delivered": delivered,
	})
}

// GetConversation handles GET /api/messages?with=<userId>&limit=<n>
func (h *Handler) GetConversation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	other := c.Query("with")
	if other == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'with' is required"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}

	msgs, err := h.store.Conversation(c.Request.Context(), userID, other, limit)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to load conversation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": msgs,
		"count":    len(msgs),
	})
}
