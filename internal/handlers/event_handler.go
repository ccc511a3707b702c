package handlers

import (
	"net/http"
	"sort"

	"content-realtime-api/internal/realtime"
	"content-realtime-api/pkg/events"

	"github.com/gin-gonic/gin"
)

// bridgeRoute decodes one event body and hands it to its dispatcher wrapper.
type bridgeRoute func(c *gin.Context, d *realtime.Dispatcher) (delivered int, ok bool)

// route binds a JSON body to P, checks that its target id is set and emits it.
func route[P events.Payload](emit func(*realtime.Dispatcher, P) int, target func(P) string) bridgeRoute {
	return func(c *gin.Context, d *realtime.Dispatcher) (int, bool) {
		var p P
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event payload"})
			return 0, false
		}
		if target(p) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Event payload is missing its target id"})
			return 0, false
		}
		return emit(d, p), true
	}
}

// bridge lists the events other services may publish through POST /api/events/:event.
// Chat, notifications, announcements and status have dedicated endpoints.
var bridge = map[events.Name]bridgeRoute{
	events.ContentCreated: route((*realtime.Dispatcher).ContentCreated, func(p events.Content) string { return p.ID }),
	events.ContentUpdated: route((*realtime.Dispatcher).ContentUpdated, func(p events.Content) string { return p.ID }),
	events.ContentDeleted: route(func(d *realtime.Dispatcher, p events.ContentRef) int { return d.ContentDeleted(p.ContentID) },
		func(p events.ContentRef) string { return p.ContentID }),
	events.ContentRated:  route((*realtime.Dispatcher).ContentRated, func(p events.ContentRating) string { return p.ContentID }),
	events.ContentViewed: route((*realtime.Dispatcher).ContentViewed, func(p events.ContentView) string { return p.ContentID }),

	events.ChapterCreated: route((*realtime.Dispatcher).ChapterCreated, func(p events.Chapter) string { return p.ContentID }),
	events.ChapterUpdated: route((*realtime.Dispatcher).ChapterUpdated, func(p events.Chapter) string { return p.ContentID }),
	events.ChapterDeleted: route((*realtime.Dispatcher).ChapterDeleted, func(p events.ChapterRef) string { return p.ContentID }),

	events.UserProfileUpdated: route((*realtime.Dispatcher).UserProfileUpdated, func(p events.UserProfile) string { return p.ID }),

	events.FriendRequestSent:     route((*realtime.Dispatcher).FriendRequestSent, func(p events.FriendRequest) string { return p.RecipientID }),
	events.FriendRequestAccepted: route((*realtime.Dispatcher).FriendRequestAccepted, func(p events.FriendRequest) string { return p.SenderID }),
	events.FriendRequestRejected: route((*realtime.Dispatcher).FriendRequestRejected, func(p events.FriendRequest) string { return p.SenderID }),
	events.FriendshipEnded:       route((*realtime.Dispatcher).FriendshipEnded, func(p events.Friendship) string { return p.FriendID }),

	events.CalendarEventCreated: route((*realtime.Dispatcher).CalendarEventCreated, func(p events.CalendarEvent) string { return p.ID }),
	events.CalendarEventUpdated: route((*realtime.Dispatcher).CalendarEventUpdated, func(p events.CalendarEvent) string { return p.ID }),
	events.CalendarEventDeleted: route(func(d *realtime.Dispatcher, p events.CalendarRef) int { return d.CalendarEventDeleted(p.EventID) },
		func(p events.CalendarRef) string { return p.EventID }),
	events.CalendarInviteReceived: route((*realtime.Dispatcher).CalendarInviteReceived, func(p events.CalendarInvite) string { return p.UserID }),
	events.CalendarInviteAccepted: route((*realtime.Dispatcher).CalendarInviteAccepted, func(p events.CalendarInvite) string { return p.EventID }),
	events.CalendarInviteRejected: route((*realtime.Dispatcher).CalendarInviteRejected, func(p events.CalendarInvite) string { return p.EventID }),

	events.MediaUploaded: route((*realtime.Dispatcher).MediaUploaded, func(p events.Media) string { return p.ID }),
	events.MediaUpdated:  route((*realtime.Dispatcher).MediaUpdated, func(p events.Media) string { return p.ID }),
	events.MediaDeleted:  route((*realtime.Dispatcher).MediaDeleted, func(p events.MediaRef) string { return p.MediaID }),
	events.AlbumCreated:  route((*realtime.Dispatcher).AlbumCreated, func(p events.Album) string { return p.ID }),
	events.AlbumUpdated:  route((*realtime.Dispatcher).AlbumUpdated, func(p events.Album) string { return p.ID }),
	events.AlbumDeleted:  route((*realtime.Dispatcher).AlbumDeleted, func(p events.AlbumRef) string { return p.AlbumID }),

	events.DiaryEntryCreated: route((*realtime.Dispatcher).DiaryEntryCreated, func(p events.DiaryEntry) string { return p.ID }),
	events.DiaryEntryUpdated: route((*realtime.Dispatcher).DiaryEntryUpdated, func(p events.DiaryEntry) string { return p.ID }),
	events.DiaryEntryDeleted: route((*realtime.Dispatcher).DiaryEntryDeleted, func(p events.DiaryRef) string { return p.EntryID }),

	events.PaymentCompleted:    route((*realtime.Dispatcher).PaymentCompleted, func(p events.Payment) string { return p.UserID }),
	events.SubscriptionUpdated: route((*realtime.Dispatcher).SubscriptionUpdated, func(p events.Subscription) string { return p.UserID }),
	events.AdViewLogged:        route((*realtime.Dispatcher).AdViewLogged, func(p events.AdView) string { return p.UserID }),
}

// BridgeEvents lists the event names accepted by PublishEvent, sorted.
func BridgeEvents() []events.Name {
	out := make([]events.Name, 0, len(bridge))
	for name := range bridge {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PublishEvent handles POST /api/events/:event
// Lets the services that own content, calendars, media and payments publish
// after their own mutation commits.
func (h *Handler) PublishEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	name := events.Name(c.Param("event"))
	publish, known := bridge[name]
	if !known {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown event"})
		return
	}

	delivered, ok := publish(c, h.hub.Dispatcher)
	if !ok {
		return
	}
	h.log.Debug().Str("user_id", userID).Str("event", string(name)).Int("delivered", delivered).Msg("event published")
	c.JSON(http.StatusAccepted, gin.H{
		"event":     name,
		"delivered": delivered,
	})
}
