package realtime

import (
	"content-realtime-api/internal/logging"
	"content-realtime-api/internal/metrics"
	"content-realtime-api/pkg/events"

	"github.com/rs/zerolog"
)

// Presence statuses broadcast on connect and disconnect.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Hub is the realtime context object: constructed once at startup and handed to
// the websocket server and every producer. Tests build isolated instances.
type Hub struct {
	Registry   *Registry
	Rooms      *Rooms
	Dispatcher *Dispatcher

	metrics  *metrics.Metrics
	presence bool
	log      zerolog.Logger
}

// HubOptions configures NewHub. Zero values are usable.
type HubOptions struct {
	Authorizer JoinAuthorizer
	Metrics    *metrics.Metrics
	// Presence broadcasts user-status-changed when an identity comes online or goes offline.
	Presence bool
}

func NewHub(opts HubOptions) *Hub {
	m := opts.Metrics
	if m == nil {
		m = metrics.NewNop()
	}
	registry := NewRegistry()
	rooms := NewRooms(registry, opts.Authorizer)
	return &Hub{
		Registry:   registry,
		Rooms:      rooms,
		Dispatcher: NewDispatcher(registry, rooms, m),
		metrics:    m,
		presence:   opts.Presence,
		log:        logging.With().Str("component", "hub").Logger(),
	}
}

// Attach registers an authenticated connection and enrols it in its private room.
func (h *Hub) Attach(c Conn) {
	identity := c.Identity()
	_, replaced := h.Registry.Register(identity, c)
	h.Rooms.enrolPrivate(c)

	h.metrics.Connections.Set(float64(h.Registry.ConnCount()))
	h.metrics.Identities.Set(float64(h.Registry.Count()))
	h.log.Info().
		Str("user_id", identity).
		Str("conn_id", c.ID()).
		Bool("replaced", replaced).
		Int("identities", h.Registry.Count()).
		Msg("connection attached")

	if h.presence && !replaced {
		h.Dispatcher.UserStatusChanged(events.UserStatus{UserID: identity, Status: StatusOnline})
	}
}

// Detach forgets a closed connection. Group cleanup happens here because this
// hub is the transport layer's owner of the groups.
func (h *Hub) Detach(c Conn) {
	identity := c.Identity()
	h.Rooms.Detach(c)
	offline := h.Registry.Unregister(identity, c)

	h.metrics.Connections.Set(float64(h.Registry.ConnCount()))
	h.metrics.Identities.Set(float64(h.Registry.Count()))
	h.log.Info().
		Str("user_id", identity).
		Str("conn_id", c.ID()).
		Bool("offline", offline).
		Msg("connection detached")

	if h.presence && offline {
		h.Dispatcher.UserStatusChanged(events.UserStatus{UserID: identity, Status: StatusOffline})
	}
}

// CloseAll closes every open transport, used during shutdown.
func (h *Hub) CloseAll() int {
	conns := h.Registry.Connections()
	for _, c := range conns {
		c.Close()
	}
	return len(conns)
}
