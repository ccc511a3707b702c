package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"content-realtime-api/pkg/events"
)

var (
	ErrInvalidRoom = errors.New("invalid room name")
	ErrPrivateRoom = errors.New("the private room cannot be left")
)

var roomKinds = []events.RoomKind{
	events.RoomContent,
	events.RoomCalendar,
	events.RoomMedia,
	events.RoomAlbum,
	events.RoomDiary,
	events.RoomUser,
}

// RoomKindOf returns the kind prefix of a room name.
func RoomKindOf(room string) (events.RoomKind, bool) {
	for _, k := range roomKinds {
		if strings.HasPrefix(room, string(k)) && len(room) > len(k) {
			return k, true
		}
	}
	return "", false
}

// Rooms is the transport-level group membership. Each group holds connections;
// the per-identity mirror is kept in the Registry. Groups exist while they have
// members and vanish when the last member leaves.
type Rooms struct {
	mu         sync.RWMutex
	groups     map[string]map[string]Conn     // room -> conn id -> conn
	byConn     map[string]map[string]struct{} // conn id -> rooms
	registry   *Registry
	authorizer JoinAuthorizer
}

func NewRooms(registry *Registry, authorizer JoinAuthorizer) *Rooms {
	if authorizer == nil {
		authorizer = AllowAll
	}
	return &Rooms{
		groups:     make(map[string]map[string]Conn),
		byConn:     make(map[string]map[string]struct{}),
		registry:   registry,
		authorizer: authorizer,
	}
}

// Join adds c to room after authorization. Joining a room twice is a no-op.
// The caller builds the room name; existence of the resource is not checked.
func (m *Rooms) Join(ctx context.Context, c Conn, room string) error {
	if _, ok := RoomKindOf(room); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRoom, room)
	}
	if err := m.authorizer.AuthorizeJoin(ctx, c.Identity(), room); err != nil {
		return err
	}
	m.add(c, room)
	return nil
}

// Leave removes c from room. Leaving a room that was never joined is a no-op.
func (m *Rooms) Leave(c Conn, room string) error {
	if room == events.RoomName(events.RoomUser, c.Identity()) {
		return ErrPrivateRoom
	}
	m.remove(c, room)
	return nil
}

// enrolPrivate joins c to its identity's private room without authorization.
func (m *Rooms) enrolPrivate(c Conn) {
	m.add(c, events.RoomName(events.RoomUser, c.Identity()))
}

func (m *Rooms) add(c Conn, room string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	group, ok := m.groups[room]
	if !ok {
		group = make(map[string]Conn)
		m.groups[room] = group
	}
	group[c.ID()] = c
	if m.byConn[c.ID()] == nil {
		m.byConn[c.ID()] = make(map[string]struct{})
	}
	m.byConn[c.ID()][room] = struct{}{}
	m.registry.addMembership(c.Identity(), room)
}

func (m *Rooms) remove(c Conn, room string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(c, room)
}

func (m *Rooms) removeLocked(c Conn, room string) {
	group, ok := m.groups[room]
	if !ok {
		return
	}
	if _, ok := group[c.ID()]; !ok {
		return
	}
	delete(group, c.ID())
	delete(m.byConn[c.ID()], room)
	if len(m.byConn[c.ID()]) == 0 {
		delete(m.byConn, c.ID())
	}

	// Keep the mirror while another connection of the same identity is still in the room.
	shared := false
	for _, other := range group {
		if other.Identity() == c.Identity() {
			shared = true
			break
		}
	}
	if !shared {
		m.registry.removeMembership(c.Identity(), room)
	}
	if len(group) == 0 {
		delete(m.groups, room)
	}
}

// Detach drops a closed connection from every group it was in.
func (m *Rooms) Detach(c Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for room := range m.byConn[c.ID()] {
		m.removeLocked(c, room)
	}
	delete(m.byConn, c.ID())
}

// Members snapshots the connections currently in room.
func (m *Rooms) Members(room string) []Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	group := m.groups[room]
	out := make([]Conn, 0, len(group))
	for _, c := range group {
		out = append(out, c)
	}
	return out
}

// Joined lists the rooms c is a member of.
func (m *Rooms) Joined(c Conn) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.byConn[c.ID()]))
	for room := range m.byConn[c.ID()] {
		out = append(out, room)
	}
	return out
}

// Sizes maps each non-empty room to its member count.
func (m *Rooms) Sizes() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int, len(m.groups))
	for room, group := range m.groups {
		out[room] = len(group)
	}
	return out
}
