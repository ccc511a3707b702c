package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// SocketConfig tunes one websocket session.
type SocketConfig struct {
	SendBuffer     int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
	PingInterval   time.Duration
}

// socket implements Conn over a gorilla websocket. Writes go through a single
// pump goroutine fed by a bounded buffer; a full buffer drops the frame.
type socket struct {
	id       string
	identity string
	ws       *websocket.Conn
	cfg      SocketConfig
	send     chan []byte
	done     chan struct{}
	once     sync.Once
	log      zerolog.Logger
}

func newSocket(ws *websocket.Conn, identity string, cfg SocketConfig, log zerolog.Logger) *socket {
	id := uuid.NewString()
	return &socket{
		id:       id,
		identity: identity,
		ws:       ws,
		cfg:      cfg,
		send:     make(chan []byte, cfg.SendBuffer),
		done:     make(chan struct{}),
		log:      log.With().Str("conn_id", id).Str("user_id", identity).Logger(),
	}
}

func (s *socket) ID() string       { return s.id }
func (s *socket) Identity() string { return s.identity }

func (s *socket) Send(frame []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

// Close stops the pumps. The send channel is never closed so concurrent Send
// calls cannot panic.
func (s *socket) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}

// writePump drains the send buffer and keeps the peer alive with pings.
func (s *socket) writePump() {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = s.ws.Close()
	}()

	for {
		select {
		case frame := <-s.send:
			_ = s.ws.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := s.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.log.Debug().Err(err).Msg("write failed")
				s.Close()
				return
			}
		case <-ticker.C:
			if err := s.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteWait)); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			_ = s.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(s.cfg.WriteWait))
			return
		}
	}
}

// readPump hands every inbound message to handle until the peer goes away.
func (s *socket) readPump(ctx context.Context, handle func(ctx context.Context, raw []byte)) {
	defer s.Close()

	s.ws.SetReadLimit(s.cfg.MaxMessageSize)
	_ = s.ws.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	s.ws.SetPongHandler(func(string) error {
		return s.ws.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		_, raw, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.log.Warn().Err(err).Msg("unexpected websocket close")
			}
			return
		}
		handle(ctx, raw)
	}
}
