package handlers

import (
	"net/http"
	"strings"

	"content-realtime-api/internal/realtime"
	"content-realtime-api/pkg/events"

	"github.com/gin-gonic/gin"
)

// GrantRoomRequest lists the identities to admit into a restricted room
type GrantRoomRequest struct {
	UserIDs []string `json:"userIds" binding:"required,min=1,dive,required"`
}

// GrantRoom handles POST /api/rooms/:room/grants
// Producer only: the service owning the resource decides who may join.
func (h *Handler) GrantRoom(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	room := c.Param("room")
	kind, valid := realtime.RoomKindOf(room)
	if !valid || kind == events.RoomUser {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room"})
		return
	}
	var req GrantRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request. userIds are required."})
		return
	}

	if err := h.store.GrantRoom(c.Request.Context(), room, userID, req.UserIDs); err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("failed to grant room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update room grants"})
		return
	}
	if h.grants != nil {
		h.grants.Invalidate(room)
	}

	grantees, err := h.store.RoomGrantees(c.Request.Context(), room)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room grants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"room":     room,
		"grantees": grantees,
	})
}

// Stats handles GET /api/realtime/stats
// Private rooms are left out so the response does not list who is online.
func (h *Handler) Stats(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	rooms := h.hub.Rooms.Sizes()
	for room := range rooms {
		if strings.HasPrefix(room, string(events.RoomUser)) {
			delete(rooms, room)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"connections": h.hub.Registry.ConnCount(),
		"identities":  h.hub.Registry.Count(),
		"rooms":       rooms,
	})
}
