package handlers

import (
	"net/http"

	"content-realtime-api/internal/database"
	"content-realtime-api/internal/logging"
	"content-realtime-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GrantInvalidator drops cached join decisions after a room's grants change.
type GrantInvalidator interface {
	Invalidate(room string)
}

// Handler holds the REST producers. Each one completes its mutation first and
// only then hands the event to the dispatcher.
type Handler struct {
	store  *database.Store
	hub    *realtime.Hub
	grants GrantInvalidator
	log    zerolog.Logger
}

func New(store *database.Store, hub *realtime.Hub, grants GrantInvalidator) *Handler {
	return &Handler{
		store:  store,
		hub:    hub,
		grants: grants,
		log:    logging.With().Str("component", "rest").Logger(),
	}
}

// currentUser reads the identity set by the auth middleware.
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
		return "", false
	}
	return userID, true
}

func newID() string {
	return uuid.NewString()
}
