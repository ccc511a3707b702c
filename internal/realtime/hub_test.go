package realtime

import (
	"context"
	"testing"

	"content-realtime-api/internal/metrics"
	"content-realtime-api/pkg/events"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHub_AttachEnrolsPrivateRoom(t *testing.T) {
	hub, m := newTestHub(t)
	c := attach(hub, "c1", "alice")

	require.ElementsMatch(t, []string{"user_alice"}, hub.Rooms.Joined(c))
	require.True(t, hub.Registry.IsMember("alice", "user_alice"))
	require.Equal(t, 1.0, promtest.ToFloat64(m.Connections))
	require.Equal(t, 1.0, promtest.ToFloat64(m.Identities))

	require.Equal(t, 1, hub.Dispatcher.EmitToRoom("user_alice", events.NotificationNew, events.Notification{UserID: "alice"}))
}

func TestHub_DetachCleansUp(t *testing.T) {
	hub, m := newTestHub(t)
	c := attach(hub, "c1", "alice")
	require.NoError(t, hub.Rooms.Join(context.Background(), c, "content_1"))

	hub.Detach(c)

	_, ok := hub.Registry.Resolve("alice")
	require.False(t, ok)
	require.Empty(t, hub.Rooms.Sizes())
	require.Empty(t, hub.Registry.Rooms("alice"))
	require.Zero(t, promtest.ToFloat64(m.Connections))
}

func TestHub_StaleDetachKeepsNewerConnection(t *testing.T) {
	hub, _ := newTestHub(t)
	old := attach(hub, "c1", "alice")
	fresh := attach(hub, "c2", "alice")
	require.NoError(t, hub.Rooms.Join(context.Background(), fresh, "content_1"))

	hub.Detach(old)

	got, ok := hub.Registry.Resolve("alice")
	require.True(t, ok)
	require.Same(t, fresh, got)
	require.True(t, hub.Registry.IsMember("alice", "content_1"))
	require.Equal(t, 1, hub.Dispatcher.EmitToIdentity("alice", events.Pong, events.Empty{}))
}

func TestHub_PresenceBroadcasts(t *testing.T) {
	hub := NewHub(HubOptions{Metrics: metrics.New(prometheus.NewRegistry()), Presence: true})
	watcher := attach(hub, "c1", "watcher")
	watcher.reset()

	alice := attach(hub, "c2", "alice")
	f := watcher.last(t)
	require.Equal(t, events.UserStatusChanged, f.Event)
	var st events.UserStatus
	require.NoError(t, f.Decode(&st))
	require.Equal(t, events.UserStatus{UserID: "alice", Status: StatusOnline}, st)

	// A reconnect that overwrites the handle is not a new arrival.
	watcher.reset()
	second := attach(hub, "c3", "alice")
	require.Empty(t, watcher.received(t))

	hub.Detach(alice)
	require.Empty(t, watcher.received(t), "stale close does not take alice offline")

	hub.Detach(second)
	require.NoError(t, watcher.last(t).Decode(&st))
	require.Equal(t, StatusOffline, st.Status)
}

func TestHub_CloseAll(t *testing.T) {
	hub, _ := newTestHub(t)
	a := attach(hub, "c1", "a")
	b := attach(hub, "c2", "b")

	require.Equal(t, 2, hub.CloseAll())
	require.True(t, a.isClosed())
	require.True(t, b.isClosed())
}
