package realtime

import (
	"slices"
	"sync"
)

// Registry maps identities to their current transport handle and mirrors the
// rooms each identity has joined. Only one handle is kept per identity: a new
// connection overwrites the mapping and the previous transport is left open.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]Conn                // identity -> current handle
	members map[string]map[string]struct{} // identity -> joined rooms
	live    map[string]Conn                // conn id -> every open transport
}

func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[string]Conn),
		members: make(map[string]map[string]struct{}),
		live:    make(map[string]Conn),
	}
}

// Register stores c as the identity's handle. It returns the handle it replaced, if any.
func (r *Registry) Register(identityID string, c Conn) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, replaced := r.handles[identityID]
	r.handles[identityID] = c
	r.live[c.ID()] = c
	if _, ok := r.members[identityID]; !ok {
		r.members[identityID] = make(map[string]struct{})
	}
	return prev, replaced
}

// Unregister forgets c. The identity mapping and its membership mirror are
// dropped only when c is still the registered handle; the close of an
// overwritten connection must not evict its successor. Reports whether the
// identity went offline.
func (r *Registry) Unregister(identityID string, c Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.live, c.ID())
	if cur, ok := r.handles[identityID]; !ok || cur != c {
		return false
	}
	delete(r.handles, identityID)
	delete(r.members, identityID)
	return true
}

// Resolve returns the identity's current handle.
func (r *Registry) Resolve(identityID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.handles[identityID]
	return c, ok
}

// Connections snapshots every open transport, including overwritten ones.
func (r *Registry) Connections() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Conn, 0, len(r.live))
	for _, c := range r.live {
		out = append(out, c)
	}
	return out
}

// Rooms lists the rooms the identity has joined, sorted.
func (r *Registry) Rooms(identityID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.members[identityID]
	out := make([]string, 0, len(set))
	for room := range set {
		out = append(out, room)
	}
	slices.Sort(out)
	return out
}

func (r *Registry) IsMember(identityID, room string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[identityID][room]
	return ok
}

// Count returns the number of registered identities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// ConnCount returns the number of open transports.
func (r *Registry) ConnCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.live)
}

// Identities lists registered identities, sorted.
func (r *Registry) Identities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handles))
	for id := range r.handles {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (r *Registry) addMembership(identityID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.members[identityID]; ok {
		set[room] = struct{}{}
	}
}

func (r *Registry) removeMembership(identityID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members[identityID], room)
}
