package client_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"content-realtime-api/internal/auth"
	"content-realtime-api/internal/realtime"
	"content-realtime-api/internal/testutil"
	"content-realtime-api/pkg/client"
	"content-realtime-api/pkg/events"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type stack struct {
	hub    *realtime.Hub
	tokens *auth.Tokens
	url    string
}

func newStack(t *testing.T) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := testutil.NewStore()
	require.NoError(t, err)

	hub := realtime.NewHub(realtime.HubOptions{Authorizer: realtime.NewGrantAuthorizer(store, time.Minute)})
	tokens := auth.NewTokens("e2e-secret-value", "content-platform", "content-clients", time.Hour)
	srv := realtime.NewServer(hub, realtime.NewHandlers(hub, store), tokens, realtime.SocketConfig{
		SendBuffer:     32,
		MaxMessageSize: 64 * 1024,
		WriteWait:      time.Second,
		PongWait:       10 * time.Second,
		PingInterval:   5 * time.Second,
	}, nil)

	r := gin.New()
	r.GET("/ws", srv.HandleWS)
	ts := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Shutdown()
		ts.Close()
	})
	return &stack{hub: hub, tokens: tokens, url: "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"}
}

func (s *stack) connect(t *testing.T, userID string) *client.Client {
	t.Helper()
	token, err := s.tokens.Generate(userID, userID)
	require.NoError(t, err)

	c := client.New(client.Options{BaseDelay: 20 * time.Millisecond})
	require.NoError(t, c.Connect(context.Background(), s.url, token))
	t.Cleanup(c.Disconnect)

	require.Eventually(t, func() bool {
		_, ok := s.hub.Registry.Resolve(userID)
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	return c
}

func collect(c *client.Client, name events.Name) chan events.Frame {
	ch := make(chan events.Frame, 8)
	c.On(name, func(f events.Frame) { ch <- f })
	return ch
}

func receive(t *testing.T, ch chan events.Frame) events.Frame {
	t.Helper()
	select {
	case f := <-ch:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("event not received")
		return events.Frame{}
	}
}

func nothing(t *testing.T, ch chan events.Frame) {
	t.Helper()
	select {
	case f := <-ch:
		t.Fatalf("unexpected %s", f.Event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestE2E_RoomScopedDelivery(t *testing.T) {
	s := newStack(t)
	a := s.connect(t, "a")
	b := s.connect(t, "b")
	joined := collect(a, events.RoomJoined)
	ratedA := collect(a, events.ContentRated)
	ratedB := collect(b, events.ContentRated)

	require.NoError(t, a.JoinContentRoom("42"))
	receive(t, joined)

	require.Equal(t, 1, s.hub.Dispatcher.ContentRated(events.ContentRating{ContentID: "42", UserID: "c", Rating: 5}))

	f := receive(t, ratedA)
	var rating events.ContentRating
	require.NoError(t, f.Decode(&rating))
	require.Equal(t, 5, rating.Rating)
	_, ok := f.Timestamp()
	require.True(t, ok)
	nothing(t, ratedB)
}

func TestE2E_PrivateMessage(t *testing.T) {
	s := newStack(t)
	a := s.connect(t, "a")
	b := s.connect(t, "b")
	sent := collect(a, events.MessageSent)
	received := collect(b, events.MessageReceived)

	require.NoError(t, a.SendMessage("b", "hello b"))

	var mine, theirs events.Message
	require.NoError(t, receive(t, sent).Decode(&mine))
	require.NoError(t, receive(t, received).Decode(&theirs))
	require.Equal(t, "hello b", mine.Content)
	require.Equal(t, mine.ID, theirs.ID)
	require.Equal(t, mine.Content, theirs.Content)
}

func TestE2E_EmitAfterDisconnectIsSilent(t *testing.T) {
	s := newStack(t)
	a := s.connect(t, "a")
	notes := collect(a, events.NotificationNew)

	a.Disconnect()
	require.Eventually(t, func() bool {
		_, ok := s.hub.Registry.Resolve("a")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)

	require.Zero(t, s.hub.Dispatcher.Notify(events.Notification{ID: "n1", UserID: "a", Kind: "system", Title: "late"}))
	nothing(t, notes)
}

func TestE2E_RoomsRestoredAfterServerDrop(t *testing.T) {
	s := newStack(t)
	a := s.connect(t, "a")
	status := collect(a, events.ConnectionStatus)
	updates := collect(a, events.ContentUpdated)

	require.NoError(t, a.JoinContentRoom("7"))
	require.Eventually(t, func() bool { return s.hub.Registry.IsMember("a", "content_7") }, 2*time.Second, 10*time.Millisecond)

	conn, ok := s.hub.Registry.Resolve("a")
	require.True(t, ok)
	conn.Close()

	for {
		var st events.Status
		require.NoError(t, receive(t, status).Decode(&st))
		if st.Status == client.StatusConnected {
			break
		}
	}
	require.Eventually(t, func() bool {
		members := s.hub.Rooms.Members("content_7")
		return len(members) == 1 && members[0].ID() != conn.ID()
	}, 2*time.Second, 10*time.Millisecond)

	s.hub.Dispatcher.ContentUpdated(events.Content{ID: "7", Title: "after reconnect"})
	var got events.Content
	require.NoError(t, receive(t, updates).Decode(&got))
	require.Equal(t, "after reconnect", got.Title)
}

func TestE2E_RejectedCredential(t *testing.T) {
	s := newStack(t)
	c := client.New(client.Options{})

	err := c.Connect(context.Background(), s.url, "not-a-token")
	require.ErrorIs(t, err, client.ErrHandshakeRejected)
	require.Equal(t, client.StateDisconnected, c.State())
	require.Zero(t, s.hub.Registry.Count())
}
