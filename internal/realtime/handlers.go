package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"content-realtime-api/internal/database"
	"content-realtime-api/internal/logging"
	"content-realtime-api/internal/metrics"
	"content-realtime-api/internal/models"
	"content-realtime-api/pkg/events"

	"github.com/rs/zerolog"
)

const (
	maxMessageLength = 4000
	maxStatusLength  = 32
)

// Store is the persistence the socket handlers depend on.
type Store interface {
	SaveMessage(ctx context.Context, m *models.Message) error
	SetUserStatus(ctx context.Context, userID, status string) error
	MarkNotificationRead(ctx context.Context, userID, id string) (*models.Notification, error)
}

// RequestError carries a message that is safe to show the client.
type RequestError struct {
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *RequestError) Unwrap() error { return e.Err }

func badRequest(format string, args ...any) error {
	return &RequestError{Message: fmt.Sprintf(format, args...)}
}

// RequestHandler processes one inbound frame from c.
type RequestHandler func(ctx context.Context, c Conn, f events.Frame) error

// Handlers routes client requests. A failing handler answers its own connection
// with an error event and never affects other connections.
type Handlers struct {
	hub     *Hub
	store   Store
	metrics *metrics.Metrics
	routes  map[events.Name]RequestHandler
	log     zerolog.Logger
}

func NewHandlers(hub *Hub, store Store) *Handlers {
	h := &Handlers{
		hub:     hub,
		store:   store,
		metrics: hub.metrics,
		log:     logging.With().Str("component", "socket-handlers").Logger(),
	}
	h.routes = map[events.Name]RequestHandler{
		events.SendMessage:          h.sendMessage,
		events.TypingStart:          h.typing(true),
		events.TypingStop:           h.typing(false),
		events.ContentEditStart:     h.contentEdit(true),
		events.ContentEditStop:      h.contentEdit(false),
		events.UpdateStatus:         h.updateStatus,
		events.MarkNotificationRead: h.markNotificationRead,
		events.Ping:                 h.ping,
	}
	for _, kind := range []events.RoomKind{events.RoomContent, events.RoomCalendar, events.RoomMedia, events.RoomAlbum, events.RoomDiary} {
		join, _ := events.JoinRequestFor(kind)
		leave, _ := events.LeaveRequestFor(kind)
		h.routes[join] = h.join(kind)
		h.routes[leave] = h.leave(kind)
	}
	return h
}

// Handle decodes and routes one raw frame.
func (h *Handlers) Handle(ctx context.Context, c Conn, raw []byte) {
	f, err := events.DecodeFrame(raw)
	if err != nil {
		h.metrics.Inbound.WithLabelValues("invalid", "error").Inc()
		h.fail(c, "", &RequestError{Message: "malformed frame", Err: err})
		return
	}

	route, ok := h.routes[f.Event]
	if !ok {
		h.metrics.Inbound.WithLabelValues("unknown", "error").Inc()
		h.fail(c, f.Event, badRequest("unknown event %q", f.Event))
		return
	}
	if err := route(ctx, c, f); err != nil {
		h.metrics.Inbound.WithLabelValues(string(f.Event), "error").Inc()
		h.fail(c, f.Event, err)
		return
	}
	h.metrics.Inbound.WithLabelValues(string(f.Event), "ok").Inc()
}

func (h *Handlers) fail(c Conn, name events.Name, err error) {
	msg := "request failed"
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		msg = reqErr.Message
	case errors.Is(err, ErrJoinDenied):
		msg = "not allowed to join this room"
	case errors.Is(err, ErrInvalidRoom):
		msg = "invalid room"
	}
	h.log.Warn().Err(err).Str("event", string(name)).Str("user_id", c.Identity()).Msg("request failed")
	h.hub.Dispatcher.EmitToConn(c, events.Error, events.Failure{Event: name, Message: msg})
}

func (h *Handlers) join(kind events.RoomKind) RequestHandler {
	return func(ctx context.Context, c Conn, f events.Frame) error {
		id, err := roomID(f)
		if err != nil {
			return err
		}
		room := events.RoomName(kind, id)
		if err := h.hub.Rooms.Join(ctx, c, room); err != nil {
			h.metrics.RoomJoins.WithLabelValues(string(kind), "denied").Inc()
			return err
		}
		h.metrics.RoomJoins.WithLabelValues(string(kind), "ok").Inc()
		h.hub.Dispatcher.EmitToConn(c, events.RoomJoined, events.RoomAck{Room: room})
		return nil
	}
}

func (h *Handlers) leave(kind events.RoomKind) RequestHandler {
	return func(_ context.Context, c Conn, f events.Frame) error {
		id, err := roomID(f)
		if err != nil {
			return err
		}
		room := events.RoomName(kind, id)
		if err := h.hub.Rooms.Leave(c, room); err != nil {
			return err
		}
		h.hub.Dispatcher.EmitToConn(c, events.RoomLeft, events.RoomAck{Room: room})
		return nil
	}
}

func roomID(f events.Frame) (string, error) {
	var req events.RoomRequest
	if err := f.Decode(&req); err != nil {
		return "", &RequestError{Message: "room id is required", Err: err}
	}
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return "", badRequest("room id is required")
	}
	return id, nil
}

func (h *Handlers) sendMessage(ctx context.Context, c Conn, f events.Frame) error {
	var req events.SendMessageRequest
	if err := f.Decode(&req); err != nil {
		return &RequestError{Message: "invalid message", Err: err}
	}
	req.Content = strings.TrimSpace(req.Content)
	switch {
	case req.RecipientID == "":
		return badRequest("recipientId is required")
	case req.Content == "":
		return badRequest("content is required")
	case utf8.RuneCountInString(req.Content) > maxMessageLength:
		return badRequest("content exceeds %d characters", maxMessageLength)
	}

	msg := &models.Message{SenderID: c.Identity(), RecipientID: req.RecipientID, Content: req.Content}
	if err := h.store.SaveMessage(ctx, msg); err != nil {
		return &RequestError{Message: "failed to send message", Err: err}
	}
	h.hub.Dispatcher.MessageDelivered(MessagePayload(msg))
	return nil
}

// MessagePayload converts a stored message to its event body.
func MessagePayload(m *models.Message) events.Message {
	return events.Message{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		CreatedAt:   m.CreatedAt,
	}
}

func (h *Handlers) typing(active bool) RequestHandler {
	return func(_ context.Context, c Conn, f events.Frame) error {
		var req events.TypingRequest
		if err := f.Decode(&req); err != nil || req.RecipientID == "" {
			return badRequest("recipientId is required")
		}
		h.hub.Dispatcher.UserTyping(req.RecipientID, events.Typing{UserID: c.Identity(), IsTyping: active})
		return nil
	}
}

func (h *Handlers) contentEdit(editing bool) RequestHandler {
	return func(_ context.Context, c Conn, f events.Frame) error {
		var req events.ContentEditRequest
		if err := f.Decode(&req); err != nil || req.ContentID == "" {
			return badRequest("contentId is required")
		}
		h.hub.Dispatcher.ContentEditing(events.ContentEdit{ContentID: req.ContentID, UserID: c.Identity(), Editing: editing})
		return nil
	}
}

func (h *Handlers) updateStatus(ctx context.Context, c Conn, f events.Frame) error {
	var req events.StatusRequest
	if err := f.Decode(&req); err != nil {
		return &RequestError{Message: "invalid status", Err: err}
	}
	status := strings.TrimSpace(req.Status)
	if status == "" || len(status) > maxStatusLength {
		return badRequest("status must be 1-%d characters", maxStatusLength)
	}
	if err := h.store.SetUserStatus(ctx, c.Identity(), status); err != nil {
		return &RequestError{Message: "failed to update status", Err: err}
	}
	h.hub.Dispatcher.UserStatusChanged(events.UserStatus{UserID: c.Identity(), Status: status})
	return nil
}

func (h *Handlers) markNotificationRead(ctx context.Context, c Conn, f events.Frame) error {
	var req events.MarkReadRequest
	if err := f.Decode(&req); err != nil || req.NotificationID == "" {
		return badRequest("notificationId is required")
	}
	if _, err := h.store.MarkNotificationRead(ctx, c.Identity(), req.NotificationID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return &RequestError{Message: "notification not found", Err: err}
		}
		return &RequestError{Message: "failed to mark notification read", Err: err}
	}
	h.hub.Dispatcher.NotificationRead(c.Identity(), req.NotificationID)
	return nil
}

func (h *Handlers) ping(_ context.Context, c Conn, _ events.Frame) error {
	h.hub.Dispatcher.EmitToConn(c, events.Pong, events.Empty{})
	return nil
}
