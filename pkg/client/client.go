// Package client is a reconnecting websocket client for the realtime API.
//
// Handlers are keyed by event name and survive reconnects. Rooms joined
// through the client are remembered and joined again after every successful
// reconnect, so room-scoped delivery resumes without caller action.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"sort"
	"sync"
	"time"

	"content-realtime-api/pkg/events"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = time.Second
)

var (
	ErrNotConnected     = errors.New("client is not connected")
	ErrAlreadyConnected = errors.New("client is already connected")
	ErrUnknownRoomKind  = errors.New("unknown room kind")
)

// State is the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// Statuses carried by the local connection-status event.
const (
	StatusConnected    = "connected"
	StatusReconnecting = "reconnecting"
	StatusDisconnected = "disconnected"
)

// Handler receives one inbound event.
type Handler func(f events.Frame)

// HandlerID identifies a registration for Off.
type HandlerID uint64

type subscription struct {
	id HandlerID
	fn Handler
}

type roomRef struct {
	kind events.RoomKind
	id   string
}

// Options configures New. Zero values select the defaults.
type Options struct {
	Dialer      Dialer
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *zerolog.Logger
	// Sleep waits between reconnect attempts; it must return early when ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Client subscribes to server events over one websocket.
type Client struct {
	dialer      Dialer
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	log         zerolog.Logger

	mu         sync.Mutex
	state      State
	conn       Transport
	url        string
	credential string
	cancel     context.CancelFunc
	rooms      map[string]roomRef

	writeMu sync.Mutex

	hmu      sync.RWMutex
	handlers map[events.Name][]subscription
	nextID   HandlerID
}

// New builds a disconnected client. Nothing is dialed until Connect.
func New(opts Options) *Client {
	c := &Client{
		dialer:      opts.Dialer,
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
		sleep:       opts.Sleep,
		state:       StateDisconnected,
		rooms:       make(map[string]roomRef),
		handlers:    make(map[events.Name][]subscription),
	}
	if c.dialer == nil {
		c.dialer = WebsocketDialer{}
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	if c.baseDelay <= 0 {
		c.baseDelay = DefaultBaseDelay
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	base := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if opts.Logger != nil {
		base = *opts.Logger
	}
	c.log = base.With().Str("component", "realtime-client").Logger()
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials serverURL presenting credential as a bearer token. A failed
// first dial is returned to the caller and is not retried.
func (c *Client) Connect(ctx context.Context, serverURL, credential string) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.state = StateConnecting
	c.url, c.credential = serverURL, credential
	life, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	conn, err := c.dial(ctx)
	if err != nil {
		cancel()
		c.mu.Lock()
		if c.state == StateConnecting {
			c.state = StateDisconnected
		}
		c.mu.Unlock()
		return fmt.Errorf("connect %s: %w", serverURL, err)
	}
	if !c.install(life, conn) {
		_ = conn.Close()
		return ErrNotConnected
	}
	c.log.Info().Str("url", serverURL).Msg("connected")
	c.rejoin(conn)
	go c.readLoop(life, conn)
	return nil
}

// Disconnect closes the transport and stops reconnecting. Handlers and
// remembered rooms are kept for the next Connect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	conn := c.conn
	c.conn = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Client) dial(ctx context.Context) (Transport, error) {
	c.mu.Lock()
	url, credential := c.url, c.credential
	c.mu.Unlock()

	header := http.Header{}
	if credential != "" {
		header.Set("Authorization", "Bearer "+credential)
	}
	return c.dialer.Dial(ctx, url, header)
}

// install makes conn current unless the client was disconnected meanwhile.
func (c *Client) install(life context.Context, conn Transport) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if life.Err() != nil {
		return false
	}
	c.conn = conn
	c.state = StateConnected
	return true
}

func (c *Client) readLoop(life context.Context, conn Transport) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.lost(life, conn, err)
			return
		}
		f, err := events.DecodeFrame(raw)
		if err != nil {
			c.log.Warn().Err(err).Msg("dropping malformed frame")
			continue
		}
		c.dispatch(f)
	}
}

func (c *Client) lost(life context.Context, conn Transport, cause error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = StateConnecting
	c.mu.Unlock()
	_ = conn.Close()

	if life.Err() != nil {
		return
	}
	c.log.Warn().Err(cause).Msg("connection lost")
	c.reconnect(life)
}

// reconnect retries with a linear backoff: attempt n waits n × base delay.
func (c *Client) reconnect(life context.Context) {
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		c.emitStatus(StatusReconnecting, attempt)
		if err := c.sleep(life, time.Duration(attempt)*c.baseDelay); err != nil {
			return
		}
		if life.Err() != nil {
			return
		}

		conn, err := c.dial(life)
		if err != nil {
			c.log.Warn().Err(err).Int("attempt", attempt).Msg("reconnect failed")
			continue
		}
		if !c.install(life, conn) {
			_ = conn.Close()
			return
		}
		c.log.Info().Int("attempt", attempt).Msg("reconnected")
		c.rejoin(conn)
		c.emitStatus(StatusConnected, attempt)
		go c.readLoop(life, conn)
		return
	}

	c.mu.Lock()
	if life.Err() == nil {
		c.state = StateDisconnected
	}
	c.mu.Unlock()
	c.log.Error().Int("attempts", c.maxAttempts).Msg("giving up reconnecting")
	c.emitStatus(StatusDisconnected, c.maxAttempts)
}

func (c *Client) rejoin(conn Transport) {
	c.mu.Lock()
	refs := make([]roomRef, 0, len(c.rooms))
	for _, ref := range c.rooms {
		refs = append(refs, ref)
	}
	c.mu.Unlock()
	sort.Slice(refs, func(i, j int) bool {
		return events.RoomName(refs[i].kind, refs[i].id) < events.RoomName(refs[j].kind, refs[j].id)
	})

	for _, ref := range refs {
		name, _ := events.JoinRequestFor(ref.kind)
		if err := c.writeTo(conn, name, events.RoomRequest{ID: ref.id}); err != nil {
			c.log.Warn().Err(err).Str("room", events.RoomName(ref.kind, ref.id)).Msg("rejoin failed")
			return
		}
	}
}

func (c *Client) emitStatus(status string, attempt int) {
	raw, err := events.Encode(events.ConnectionStatus, events.Status{Status: status, Attempt: attempt}, time.Now())
	if err != nil {
		return
	}
	f, err := events.DecodeFrame(raw)
	if err != nil {
		return
	}
	c.dispatch(f)
}

// On registers h for name. Handlers for one name run in registration order.
func (c *Client) On(name events.Name, h Handler) HandlerID {
	c.hmu.Lock()
	defer c.hmu.Unlock()
	c.nextID++
	c.handlers[name] = append(c.handlers[name], subscription{id: c.nextID, fn: h})
	return c.nextID
}

// Off removes a registration. It reports whether id was registered for name.
func (c *Client) Off(name events.Name, id HandlerID) bool {
	c.hmu.Lock()
	defer c.hmu.Unlock()
	subs := c.handlers[name]
	i := slices.IndexFunc(subs, func(s subscription) bool { return s.id == id })
	if i < 0 {
		return false
	}
	c.handlers[name] = slices.Delete(slices.Clone(subs), i, i+1)
	if len(c.handlers[name]) == 0 {
		delete(c.handlers, name)
	}
	return true
}

func (c *Client) dispatch(f events.Frame) {
	c.hmu.RLock()
	subs := c.handlers[f.Event]
	c.hmu.RUnlock()

	for _, s := range subs {
		c.invoke(s, f)
	}
}

func (c *Client) invoke(s subscription, f events.Frame) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Str("event", string(f.Event)).Msg("event handler panicked")
		}
	}()
	s.fn(f)
}

func (c *Client) emit(name events.Name, body any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return c.writeTo(conn, name, body)
}

func (c *Client) writeTo(conn Transport, name events.Name, body any) error {
	raw, err := events.EncodeRequest(name, body)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		return fmt.Errorf("send %s: %w", name, err)
	}
	return nil
}

// Rooms lists the rooms the client will hold after a reconnect, sorted.
func (c *Client) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.rooms))
	for r := range c.rooms {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// JoinRoom remembers the room and asks the server to join it. While
// disconnected the request is deferred to the next connect.
func (c *Client) JoinRoom(kind events.RoomKind, id string) error {
	name, ok := events.JoinRequestFor(kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRoomKind, kind)
	}
	c.mu.Lock()
	c.rooms[events.RoomName(kind, id)] = roomRef{kind: kind, id: id}
	c.mu.Unlock()

	if err := c.emit(name, events.RoomRequest{ID: id}); err != nil && !errors.Is(err, ErrNotConnected) {
		return err
	}
	return nil
}

// LeaveRoom forgets the room and asks the server to leave it.
func (c *Client) LeaveRoom(kind events.RoomKind, id string) error {
	name, ok := events.LeaveRequestFor(kind)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRoomKind, kind)
	}
	c.mu.Lock()
	delete(c.rooms, events.RoomName(kind, id))
	c.mu.Unlock()

	if err := c.emit(name, events.RoomRequest{ID: id}); err != nil && !errors.Is(err, ErrNotConnected) {
		return err
	}
	return nil
}

func (c *Client) JoinContentRoom(id string) error   { return c.JoinRoom(events.RoomContent, id) }
func (c *Client) LeaveContentRoom(id string) error  { return c.LeaveRoom(events.RoomContent, id) }
func (c *Client) JoinCalendarRoom(id string) error  { return c.JoinRoom(events.RoomCalendar, id) }
func (c *Client) LeaveCalendarRoom(id string) error { return c.LeaveRoom(events.RoomCalendar, id) }
func (c *Client) JoinMediaRoom(id string) error     { return c.JoinRoom(events.RoomMedia, id) }
func (c *Client) LeaveMediaRoom(id string) error    { return c.LeaveRoom(events.RoomMedia, id) }
func (c *Client) JoinAlbumRoom(id string) error     { return c.JoinRoom(events.RoomAlbum, id) }
func (c *Client) LeaveAlbumRoom(id string) error    { return c.LeaveRoom(events.RoomAlbum, id) }
func (c *Client) JoinDiaryRoom(id string) error     { return c.JoinRoom(events.RoomDiary, id) }
func (c *Client) LeaveDiaryRoom(id string) error    { return c.LeaveRoom(events.RoomDiary, id) }

func (c *Client) SendMessage(recipientID, content string) error {
	return c.emit(events.SendMessage, events.SendMessageRequest{RecipientID: recipientID, Content: content})
}

func (c *Client) StartTyping(recipientID string) error {
	return c.emit(events.TypingStart, events.TypingRequest{RecipientID: recipientID})
}

func (c *Client) StopTyping(recipientID string) error {
	return c.emit(events.TypingStop, events.TypingRequest{RecipientID: recipientID})
}

func (c *Client) StartContentEdit(contentID string) error {
	return c.emit(events.ContentEditStart, events.ContentEditRequest{ContentID: contentID})
}

func (c *Client) StopContentEdit(contentID string) error {
	return c.emit(events.ContentEditStop, events.ContentEditRequest{ContentID: contentID})
}

func (c *Client) UpdateStatus(status string) error {
	return c.emit(events.UpdateStatus, events.StatusRequest{Status: status})
}

func (c *Client) MarkNotificationRead(notificationID string) error {
	return c.emit(events.MarkNotificationRead, events.MarkReadRequest{NotificationID: notificationID})
}

func (c *Client) Ping() error {
	return c.emit(events.Ping, nil)
}
