package realtime

import (
	"time"

	"content-realtime-api/internal/logging"
	"content-realtime-api/internal/metrics"
	"content-realtime-api/pkg/events"

	"github.com/rs/zerolog"
)

// Target shapes, used as the metrics label.
const (
	targetIdentity = "identity"
	targetRoom     = "room"
	targetAll      = "broadcast"
	targetConn     = "connection"
)

// Dispatcher is the single fan-out surface for producers. Every emit is best
// effort: no acknowledgement, no retry, no queueing for offline identities.
// The returned count is the number of connections the frame was queued on.
type Dispatcher struct {
	registry *Registry
	rooms    *Rooms
	metrics  *metrics.Metrics
	now      func() time.Time
	log      zerolog.Logger
}

func NewDispatcher(registry *Registry, rooms *Rooms, m *metrics.Metrics) *Dispatcher {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Dispatcher{
		registry: registry,
		rooms:    rooms,
		metrics:  m,
		now:      time.Now,
		log:      logging.With().Str("component", "dispatcher").Logger(),
	}
}

// EmitToIdentity sends to the identity's current handle; offline identities are skipped silently.
func (d *Dispatcher) EmitToIdentity(identityID string, name events.Name, p events.Payload) int {
	c, ok := d.registry.Resolve(identityID)
	if !ok {
		d.metrics.EventsEmitted.WithLabelValues(string(name), targetIdentity).Inc()
		return 0
	}
	return d.deliver(name, targetIdentity, []Conn{c}, p)
}

// EmitToRoom sends to every connection currently in room.
func (d *Dispatcher) EmitToRoom(room string, name events.Name, p events.Payload) int {
	return d.deliver(name, targetRoom, d.rooms.Members(room), p)
}

// BroadcastToAll sends to every open connection.
func (d *Dispatcher) BroadcastToAll(name events.Name, p events.Payload) int {
	return d.deliver(name, targetAll, d.registry.Connections(), p)
}

// EmitToConn answers one specific connection, e.g. with an error or an ack.
func (d *Dispatcher) EmitToConn(c Conn, name events.Name, p events.Payload) int {
	return d.deliver(name, targetConn, []Conn{c}, p)
}

// EmitToIdentityAndRoom reaches the owner and the resource room, once per connection.
func (d *Dispatcher) EmitToIdentityAndRoom(identityID, room string, name events.Name, p events.Payload) int {
	targets := d.rooms.Members(room)
	if c, ok := d.registry.Resolve(identityID); ok {
		targets = appendUnique(targets, c)
	}
	return d.deliver(name, targetRoom, targets, p)
}

// EmitToIdentities reaches each listed identity once, skipping duplicates.
func (d *Dispatcher) EmitToIdentities(ids []string, name events.Name, p events.Payload) int {
	var targets []Conn
	for _, id := range ids {
		if c, ok := d.registry.Resolve(id); ok {
			targets = appendUnique(targets, c)
		}
	}
	return d.deliver(name, targetIdentity, targets, p)
}

func appendUnique(conns []Conn, c Conn) []Conn {
	for _, existing := range conns {
		if existing.ID() == c.ID() {
			return conns
		}
	}
	return append(conns, c)
}

func (d *Dispatcher) deliver(name events.Name, target string, conns []Conn, p events.Payload) int {
	d.metrics.EventsEmitted.WithLabelValues(string(name), target).Inc()
	if len(conns) == 0 {
		return 0
	}

	frame, err := events.Encode(name, p, d.now())
	if err != nil {
		d.log.Error().Err(err).Str("event", string(name)).Msg("failed to encode event")
		return 0
	}

	sent := 0
	for _, c := range conns {
		if c.Send(frame) {
			sent++
			continue
		}
		d.metrics.FramesDropped.WithLabelValues(string(name)).Inc()
		d.log.Warn().
			Str("event", string(name)).
			Str("conn_id", c.ID()).
			Str("user_id", c.Identity()).
			Msg("dropped frame")
	}
	d.log.Debug().Str("event", string(name)).Str("target", target).Int("sent", sent).Msg("event emitted")
	return sent
}
