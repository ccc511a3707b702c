package realtime

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"content-realtime-api/internal/cache"
	"content-realtime-api/pkg/events"
)

// ErrJoinDenied is returned when an identity may not join a room.
var ErrJoinDenied = errors.New("join denied")

// JoinAuthorizer decides whether an identity may join a room. It runs on every
// explicit join; the private room enrolment at connect time bypasses it.
type JoinAuthorizer interface {
	AuthorizeJoin(ctx context.Context, identityID, room string) error
}

// AuthorizerFunc adapts a function to JoinAuthorizer.
type AuthorizerFunc func(ctx context.Context, identityID, room string) error

func (f AuthorizerFunc) AuthorizeJoin(ctx context.Context, identityID, room string) error {
	return f(ctx, identityID, room)
}

// AllowAll admits every join.
var AllowAll = AuthorizerFunc(func(context.Context, string, string) error { return nil })

// GrantSource lists the identities a room is restricted to. An empty list means open.
type GrantSource interface {
	RoomGrantees(ctx context.Context, room string) ([]string, error)
}

// GrantAuthorizer denies joining another identity's private room and enforces
// persisted room grants. Decisions are cached per (room, identity) for ttl.
type GrantAuthorizer struct {
	grants GrantSource
	cache  cache.Cache[string, bool]
	ttl    time.Duration
}

func NewGrantAuthorizer(grants GrantSource, ttl time.Duration) *GrantAuthorizer {
	return &GrantAuthorizer{
		grants: grants,
		cache:  cache.NewTTLCache[string, bool](),
		ttl:    ttl,
	}
}

func decisionKey(room, identityID string) string {
	return room + "\x00" + identityID
}

func (a *GrantAuthorizer) AuthorizeJoin(ctx context.Context, identityID, room string) error {
	if strings.HasPrefix(room, string(events.RoomUser)) {
		if room != events.RoomName(events.RoomUser, identityID) {
			return fmt.Errorf("%w: %s is private", ErrJoinDenied, room)
		}
		return nil
	}

	key := decisionKey(room, identityID)
	allowed, ok := a.cache.Get(key)
	if !ok {
		grantees, err := a.grants.RoomGrantees(ctx, room)
		if err != nil {
			return fmt.Errorf("authorize %s: %w", room, err)
		}
		allowed = len(grantees) == 0 || slices.Contains(grantees, identityID)
		if a.ttl > 0 {
			a.cache.Set(key, allowed, a.ttl)
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s is restricted", ErrJoinDenied, room)
	}
	return nil
}

// Invalidate forgets cached decisions for room after its grants change.
func (a *GrantAuthorizer) Invalidate(room string) {
	prefix := room + "\x00"
	a.cache.DeleteFunc(func(k string) bool { return strings.HasPrefix(k, prefix) })
}

// Cached reports how many live decisions are held.
func (a *GrantAuthorizer) Cached() int {
	return a.cache.Len()
}

// Sweep drops expired decisions every interval until ctx is done.
func (a *GrantAuthorizer) Sweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.cache.PurgeExpired()
		}
	}
}
